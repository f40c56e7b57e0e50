// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conll writes and reads annotated records in the space-delimited
// CoNLL-style layout consumed by downstream review tooling:
//
//	TXT GOLD_VALUE PREDICTED_VALUE CONFIDENCE SPAN CUI SEMANTIC-TYPE [NEGATED TERM_MODIFIERS]
package conll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// ErrMalformedLine is returned by Read for a line that does not have the
// expected columns.
var ErrMalformedLine = errors.New("malformed conll line")

const (
	baseColumns     = 7
	modifierColumns = 9
)

// Writer formats records, one per line.
type Writer struct {
	// SilenceOutside skips records carrying the outside label.
	SilenceOutside bool

	// WithModifiers appends the NEGATED and TERM_MODIFIERS columns.
	WithModifiers bool
}

// Write emits records to w in the order given. Lines are separated by a
// newline with no trailing newline after the last line.
func (cw Writer) Write(w io.Writer, records []types.AnnotatedRecord) error {
	bw := bufio.NewWriter(w)
	first := true
	for _, r := range records {
		if cw.SilenceOutside && r.IsOutside() {
			continue
		}
		if !first {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		first = false
		if _, err := bw.WriteString(cw.Line(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes records to path, replacing any existing file.
func (cw Writer) WriteFile(path string, records []types.AnnotatedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := cw.Write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Line formats a single record.
func (cw Writer) Line(r types.AnnotatedRecord) string {
	cols := []string{
		Text(r.Token),
		orNone(r.Gold),
		orNone(r.Predicted),
		orNone(r.Confidence),
		r.Span.String(),
		orNone(r.CUI),
		orNone(r.SemanticType),
	}
	if cw.WithModifiers {
		cols = append(cols, orNone(r.Negated), orNone(r.TermModifiers))
	}
	return strings.Join(cols, " ")
}

// Text replaces every run of whitespace in a token with a single
// underscore so the token occupies exactly one column.
func Text(tok string) string {
	return strings.Join(strings.FieldsFunc(tok, unicode.IsSpace), "_")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.None
	}
	return strings.Join(strings.Fields(s), "_")
}

// Read parses lines written by Writer. Blank lines are skipped. Lines with
// seven columns get None for the two modifier fields.
func Read(r io.Reader) ([]types.AnnotatedRecord, error) {
	var records []types.AnnotatedRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading conll: %w", err)
	}
	return records, nil
}

func parseLine(line string) (types.AnnotatedRecord, error) {
	cols := strings.Fields(line)
	if len(cols) != baseColumns && len(cols) != modifierColumns {
		return types.AnnotatedRecord{}, fmt.Errorf("%w: %d columns", ErrMalformedLine, len(cols))
	}

	span, err := parseSpan(cols[4])
	if err != nil {
		return types.AnnotatedRecord{}, err
	}

	rec := types.AnnotatedRecord{
		Token:         cols[0],
		Gold:          cols[1],
		Predicted:     cols[2],
		Confidence:    cols[3],
		Span:          span,
		CUI:           cols[5],
		SemanticType:  cols[6],
		Negated:       types.None,
		TermModifiers: types.None,
	}
	if len(cols) == modifierColumns {
		rec.Negated = cols[7]
		rec.TermModifiers = cols[8]
	}
	return rec, nil
}

func parseSpan(s string) (types.Span, error) {
	startStr, endStr, ok := strings.Cut(s, ":")
	if !ok {
		return types.Span{}, fmt.Errorf("%w: span %q", ErrMalformedLine, s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return types.Span{}, fmt.Errorf("%w: span start %q", ErrMalformedLine, startStr)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return types.Span{}, fmt.Errorf("%w: span end %q", ErrMalformedLine, endStr)
	}
	if end < start {
		return types.Span{}, fmt.Errorf("%w: span %q ends before it starts", ErrMalformedLine, s)
	}
	return types.Span{Start: start, End: end}, nil
}
