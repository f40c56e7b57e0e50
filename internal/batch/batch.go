// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the annotation pipeline over a directory of clinical
// notes. Each document is processed independently in a bounded worker
// pool; a failing document is reported and counted without aborting the
// run. Outputs per run:
//
//	<out>/<basename>                    CoNLL records
//	<out>/findings/<id>-findings.yaml   decision trail per document
//	<out>/phrases.txt                   context report of retained matches
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/uab-informatics/adrenal-extract/internal/annotate"
	"github.com/uab-informatics/adrenal-extract/internal/conll"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const (
	// FindingsDir is the subdirectory of the output directory holding
	// per-document findings files.
	FindingsDir = "findings"

	// DefaultPhrasesFile is the context report name.
	DefaultPhrasesFile = "phrases.txt"

	// DefaultContextWidth is the number of bytes of context shown on each
	// side of a match in the phrases report.
	DefaultContextWidth = 30

	findingsSuffix = "-findings.yaml"
)

// ErrInvalidEncoding is returned for an input file that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// Summary holds counts from a batch run.
type Summary struct {
	// RunID identifies the run in findings files.
	RunID string

	Processed int
	Failed    int

	// Findings counts retained findings across all processed documents.
	Findings int
}

// Total returns the number of documents seen.
func (s Summary) Total() int {
	return s.Processed + s.Failed
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// newRunID is replaced in tests for deterministic output.
var newRunID = func() string {
	return ulid.Make().String()
}

// outcome is the per-document result gathered by the worker pool.
type outcome struct {
	docID    string
	result   types.DocumentResult
	findings types.FindingsFile
	text     string
	err      error
}

// Run processes every eligible file in cfg.InputDir and writes outputs to
// cfg.OutputDir. Per-document status lines and the final summary are
// printed to w in input order. The returned error is reserved for failures
// that prevent the run as a whole (missing input directory, unwritable
// output directory, cancellation); document failures are counted in the
// summary.
func Run(ctx context.Context, p *annotate.Pipeline, cfg types.ExtractionConfig, w io.Writer) (Summary, error) {
	cfg = withDefaults(cfg)
	summary := Summary{RunID: newRunID()}

	files, err := InputFiles(cfg.InputDir)
	if err != nil {
		return summary, err
	}
	if sameDir(cfg.InputDir, cfg.OutputDir) {
		return summary, fmt.Errorf("output directory %s would overwrite the input notes", cfg.OutputDir)
	}

	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, FindingsDir), 0o755); err != nil {
		return summary, fmt.Errorf("creating output directory: %w", err)
	}

	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = processFile(p, path, cfg, summary.RunID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("batch cancelled: %w", err)
	}

	writer := conll.Writer{SilenceOutside: cfg.SilenceOutside, WithModifiers: cfg.WithModifiers}
	var phrases strings.Builder

	for _, o := range outcomes {
		if o.err == nil {
			o.err = writer.WriteFile(filepath.Join(cfg.OutputDir, o.docID), o.result.Records)
		}
		if o.err == nil {
			o.err = writeFindings(FindingsPath(cfg.OutputDir, o.docID), o.findings)
		}
		if o.err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", o.docID, o.err)
			summary.Failed++
			continue
		}

		retained := len(o.result.Retained())
		if !o.result.Section.Found {
			fmt.Fprintf(w, "processed %s (no adrenal section)\n", o.docID)
		} else {
			fmt.Fprintf(w, "processed %s (%d findings)\n", o.docID, retained)
		}
		summary.Processed++
		summary.Findings += retained
		writePhrases(&phrases, o.docID, o.text, o.result, cfg.ContextWidth)
	}

	phrasesPath := filepath.Join(cfg.OutputDir, cfg.PhrasesFile)
	if err := os.WriteFile(phrasesPath, []byte(phrases.String()), 0o644); err != nil {
		return summary, fmt.Errorf("writing %s: %w", phrasesPath, err)
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d failed, %d findings (total: %d, run %s)\n",
		summary.Processed, summary.Failed, summary.Findings, summary.Total(), summary.RunID)
	return summary, nil
}

// InputFiles lists the regular files in dir with a .txt extension or no
// extension, sorted by name.
func InputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext != "" && ext != ".txt" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// ReadDocument loads a note from path. The document ID is the base name.
func ReadDocument(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return types.Document{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrInvalidEncoding)
	}
	return types.Document{ID: filepath.Base(path), Text: string(data)}, nil
}

func processFile(p *annotate.Pipeline, path string, cfg types.ExtractionConfig, runID string) outcome {
	o := outcome{docID: filepath.Base(path)}

	doc, err := ReadDocument(path)
	if err != nil {
		o.err = err
		return o
	}

	o.text = doc.Text
	o.result = p.Process(doc)
	o.findings = FindingsFile(runID, doc.Text, o.result, cfg.ContextWidth)
	return o
}

// FindingsPath returns where the findings file for docID is written. The
// .txt extension is dropped; "note" and "note.txt" share a path and the
// later one in input order wins.
func FindingsPath(outputDir, docID string) string {
	base := strings.TrimSuffix(docID, filepath.Ext(docID))
	return filepath.Join(outputDir, FindingsDir, base+findingsSuffix)
}

func writeFindings(path string, ff types.FindingsFile) error {
	data, err := yaml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func withDefaults(cfg types.ExtractionConfig) types.ExtractionConfig {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.PhrasesFile == "" {
		cfg.PhrasesFile = DefaultPhrasesFile
	}
	if cfg.ContextWidth <= 0 {
		cfg.ContextWidth = DefaultContextWidth
	}
	return cfg
}
