// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/uab-informatics/adrenal-extract/internal/annotate"
	"github.com/uab-informatics/adrenal-extract/internal/lexicon"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const noteA = "ADRENALS: Left 2 cm adenoma.\nLIVER: normal"

func setup(t *testing.T, files map[string]string) (types.ExtractionConfig, *annotate.Pipeline) {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "notes")
	require.NoError(t, os.MkdirAll(in, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(content), 0o644))
	}

	p, err := annotate.New(lexicon.Default())
	require.NoError(t, err)

	origRunID := newRunID
	newRunID = func() string { return "01TESTRUN" }
	t.Cleanup(func() { newRunID = origRunID })

	return types.ExtractionConfig{InputDir: in, OutputDir: filepath.Join(root, "out"), Workers: 2}, p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_WritesOutputs(t *testing.T) {
	cfg, p := setup(t, map[string]string{"a.txt": noteA})
	cfg.SilenceOutside = true

	var buf bytes.Buffer
	summary, err := Run(context.Background(), p, cfg, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Findings)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, "01TESTRUN", summary.RunID)

	assert.Equal(t, "adenoma None Adrenal None 20:27 None None",
		readFile(t, filepath.Join(cfg.OutputDir, "a.txt")))

	assert.Equal(t, "a.txt:\n* ADRENALS: Left 2 cm >>adenoma<<. LIVER: normal\n",
		readFile(t, filepath.Join(cfg.OutputDir, DefaultPhrasesFile)))

	var ff types.FindingsFile
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, FindingsPath(cfg.OutputDir, "a.txt"))), &ff))
	assert.Equal(t, "01TESTRUN", ff.RunID)
	assert.Equal(t, "a.txt", ff.DocumentID)
	require.Len(t, ff.Findings, 1)
	assert.Equal(t, "adenoma", ff.Findings[0].Term)
	assert.Equal(t, []string{"2 cm"}, ff.Findings[0].Measurements)
	assert.InDelta(t, 2.0, ff.Findings[0].MaxCM, 1e-9)
	assert.True(t, ff.Findings[0].Retained)
	assert.Len(t, ff.Findings[0].ID, 12)

	assert.Contains(t, buf.String(), "processed a.txt (1 findings)")
	assert.Contains(t, buf.String(), "Batch summary: 1 processed, 0 failed, 1 findings")
}

func TestRun_FileSelection(t *testing.T) {
	cfg, p := setup(t, map[string]string{
		"a.txt":     noteA,
		"b":         "ADRENALS: normal.",
		"notes.md":  noteA,
		"image.png": "binary",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.InputDir, "sub.txt"), 0o755))

	var buf bytes.Buffer
	summary, err := Run(context.Background(), p, cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total())

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "notes.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "b"))
	assert.NoError(t, err)
}

func TestRun_InvalidEncodingFailsOneDocument(t *testing.T) {
	cfg, p := setup(t, map[string]string{
		"a.txt":   noteA,
		"bad.txt": "ADRENALS: \xff\xfe nodule",
		"c.txt":   "No adrenal header here.",
	})

	var buf bytes.Buffer
	summary, err := Run(context.Background(), p, cfg, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())

	out := buf.String()
	assert.Contains(t, out, "failed  bad.txt")
	assert.Contains(t, out, ErrInvalidEncoding.Error())
	assert.Contains(t, out, "processed c.txt (no adrenal section)")

	// Status lines follow input order regardless of worker scheduling.
	assert.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "bad.txt"))
	assert.Less(t, strings.Index(out, "bad.txt"), strings.Index(out, "c.txt"))

	// A document without a section still gets a CoNLL file of outside rows.
	conllOut := readFile(t, filepath.Join(cfg.OutputDir, "c.txt"))
	assert.Contains(t, conllOut, "header None O None")
}

func TestRun_DroppedFindingsStayOutOfReports(t *testing.T) {
	cfg, p := setup(t, map[string]string{"small.txt": "ADRENALS: Left 5 mm nodule."})
	cfg.SilenceOutside = true

	summary, err := Run(context.Background(), p, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Findings)

	assert.Empty(t, readFile(t, filepath.Join(cfg.OutputDir, "small.txt")))
	assert.Empty(t, readFile(t, filepath.Join(cfg.OutputDir, DefaultPhrasesFile)))

	var ff types.FindingsFile
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, FindingsPath(cfg.OutputDir, "small.txt"))), &ff))
	require.Len(t, ff.Findings, 1)
	assert.False(t, ff.Findings[0].Retained)
}

func TestRun_MissingInputDir(t *testing.T) {
	p, err := annotate.New(lexicon.Default())
	require.NoError(t, err)

	_, err = Run(context.Background(), p, types.ExtractionConfig{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_RefusesToOverwriteInput(t *testing.T) {
	cfg, p := setup(t, map[string]string{"a.txt": noteA})
	cfg.OutputDir = cfg.InputDir

	_, err := Run(context.Background(), p, cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, noteA, readFile(t, filepath.Join(cfg.InputDir, "a.txt")))
}

func TestRun_Cancelled(t *testing.T) {
	cfg, p := setup(t, map[string]string{"a.txt": noteA})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, p, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContext(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		span  types.Span
		width int
		want  string
	}{
		{"clamped at both ends", "a nodule b", types.Span{Start: 2, End: 8}, 30, "a >>nodule<< b"},
		{"window", "0123456789nodule0123456789", types.Span{Start: 10, End: 16}, 3, "789>>nodule<<012"},
		{"newlines collapse", "x\n\n\nmass\r\ny", types.Span{Start: 4, End: 8}, 30, "x >>mass<< y"},
		{"rune boundary", "éé mass", types.Span{Start: 5, End: 9}, 4, "éé >>mass<<"},
		{"span past end", "a mass", types.Span{Start: 2, End: 9}, 30, ""},
		{"reversed span", "a mass", types.Span{Start: 4, End: 2}, 30, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Context(tt.text, tt.span, tt.width))
		})
	}
}

func TestStableID(t *testing.T) {
	a := stableID("a.txt", types.Span{Start: 1, End: 5}, "mass")
	assert.Equal(t, a, stableID("a.txt", types.Span{Start: 1, End: 5}, "mass"))
	assert.NotEqual(t, a, stableID("b.txt", types.Span{Start: 1, End: 5}, "mass"))
	assert.NotEqual(t, a, stableID("a.txt", types.Span{Start: 15, End: 5}, "mass"))
}

func TestFindingsPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "findings", "note-findings.yaml"), FindingsPath("out", "note.txt"))
	assert.Equal(t, filepath.Join("out", "findings", "note-findings.yaml"), FindingsPath("out", "note"))
}
