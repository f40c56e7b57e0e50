// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// FindingsFile flattens a document result into its serializable form.
// Every candidate match is listed, including those dropped by the size
// decision.
func FindingsFile(runID, text string, res types.DocumentResult, width int) types.FindingsFile {
	ff := types.FindingsFile{
		RunID:      runID,
		DocumentID: res.DocumentID,
		Section:    res.Section,
		Findings:   make([]types.FindingRecord, 0, len(res.Findings)),
	}

	for _, f := range res.Findings {
		rec := types.FindingRecord{
			ID:        stableID(res.DocumentID, f.Match.Span, f.Match.Term),
			Term:      f.Match.Term,
			Span:      f.Match.Span,
			Sentence:  collapse(f.Match.Sentence.Text),
			Context:   Context(text, f.Match.Span, width),
			Retained:  f.Retained,
			Negated:   f.Modifiers.Negated,
			Modifiers: f.Modifiers.String(),
		}
		for _, m := range f.Measurements {
			rec.Measurements = append(rec.Measurements, m.Text)
			rec.MaxCM = max(rec.MaxCM, m.MaxCM())
		}
		ff.Findings = append(ff.Findings, rec)
	}
	return ff
}

// Context returns up to width bytes on each side of span with the matched
// text marked as >>term<<. Newline runs are collapsed to one space. The
// window is widened to the nearest rune boundary so the result stays valid
// UTF-8. A span that is reversed or falls outside text yields "".
func Context(text string, span types.Span, width int) string {
	if span.Len() < 0 || !(types.Span{End: len(text)}).Contains(span) {
		return ""
	}
	start := max(0, span.Start-width)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := min(len(text), span.End+width)
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	s := text[start:span.Start] + ">>" + text[span.Start:span.End] + "<<" + text[span.End:end]
	return collapseNewlines(s)
}

// writePhrases appends the report block for one document: a header line
// with the document ID followed by one bullet per retained match.
// Documents without retained matches add nothing.
func writePhrases(b *strings.Builder, docID, text string, res types.DocumentResult, width int) {
	retained := res.Retained()
	if len(retained) == 0 {
		return
	}
	b.WriteString(docID + ":\n")
	for _, f := range retained {
		b.WriteString("* " + Context(text, f.Match.Span, width) + "\n")
	}
}

// stableID is the first 12 hex characters of SHA-256 over the document ID,
// the span, and the term.
func stableID(docID string, span types.Span, term string) string {
	h := sha256.New()
	h.Write([]byte(docID))
	h.Write([]byte(strconv.Itoa(span.Start)))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.Itoa(span.End)))
	h.Write([]byte(term))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func collapseNewlines(s string) string {
	var b strings.Builder
	inBreak := false
	for _, r := range s {
		if r == '\n' || r == '\r' {
			if !inBreak {
				b.WriteByte(' ')
			}
			inBreak = true
			continue
		}
		inBreak = false
		b.WriteRune(r)
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
