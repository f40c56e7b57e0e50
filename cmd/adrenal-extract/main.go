// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the adrenal-extract CLI. Each stage
// is a subcommand: extract runs the annotator over a directory of notes,
// inspect shows the decision trail for one note, and findings indexes and
// queries extraction output.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uab-informatics/adrenal-extract/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE; commands log through it.
var (
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

// rootCmd is the base command for the adrenal-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "adrenal-extract",
	Short: "Flag adrenal lesion findings in radiology notes",
	Long: `adrenal-extract locates the adrenal section of free-text radiology
reports, finds lesion vocabulary, drops findings whose measurements are all
below the size threshold, detects negation, and writes token-level CoNLL
output for downstream review.

Settings come from adrenal-extract.yaml, ADRENAL_EXTRACT_* environment
variables (a .env file is loaded first), and flags, in increasing priority.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closer, err := logging.New(logConfig(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger, logCloser = l, closer
		slog.SetDefault(logger)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./adrenal-extract.yaml or ~/.config/adrenal-extract/adrenal-extract.yaml)")
	rootCmd.PersistentFlags().String("lexicon", "", "YAML file overriding the built-in terms, cues, and threshold")
	rootCmd.PersistentFlags().String("log-dir", "", "write logs to a rotating file in this directory instead of stderr")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	bindFlag("lexicon.path", rootCmd.PersistentFlags().Lookup("lexicon"))
	bindFlag("log.dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	bindFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("adrenal-extract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "adrenal-extract"))
		}
	}

	viper.SetEnvPrefix("ADRENAL_EXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
