// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uab-informatics/adrenal-extract/internal/batch"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Annotate every note in a directory",
	Long: `Extract reads each .txt or extensionless file in the input directory,
runs the adrenal annotator, and writes one CoNLL file per note to the output
directory, along with findings/<note>-findings.yaml and a phrases.txt
context report.

A note that cannot be read fails alone; the command exits non-zero when
any note failed.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig()
	if cfg.InputDir == "" {
		return fmt.Errorf("input directory required: pass -i/--input or set extraction.input_dir")
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}

	logger.Info("extraction started", "input", cfg.InputDir, "output", cfg.OutputDir, "workers", cfg.Workers)

	summary, err := batch.Run(cmd.Context(), p, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("extraction finished", "run", summary.RunID,
		"processed", summary.Processed, "failed", summary.Failed, "findings", summary.Findings)

	if summary.HasFailures() {
		return fmt.Errorf("%d note(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	extractCmd.Flags().StringP("input", "i", "", "directory of notes to annotate")
	extractCmd.Flags().StringP("output", "o", "output", "directory for CoNLL, findings, and phrases output")
	extractCmd.Flags().Bool("silence-o", false, "omit tokens labeled O from the CoNLL output")
	extractCmd.Flags().Bool("modifiers", false, "append the NEGATED and TERM_MODIFIERS columns")
	extractCmd.Flags().Int("workers", 0, "notes processed concurrently (0 = number of CPUs)")

	bindFlag("extraction.input_dir", extractCmd.Flags().Lookup("input"))
	bindFlag("extraction.output_dir", extractCmd.Flags().Lookup("output"))
	bindFlag("extraction.silence_outside", extractCmd.Flags().Lookup("silence-o"))
	bindFlag("extraction.with_modifiers", extractCmd.Flags().Lookup("modifiers"))
	bindFlag("extraction.workers", extractCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(extractCmd)
}
