// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section locates the adrenal findings section of a radiology
// report. Reports are divided by upper-case "LABEL:" header lines; the
// adrenal section is introduced by an "ADRENAL:" or "ADRENALS:" header and
// runs until the next header line or the end of the document.
package section

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

var (
	// adrenalHeader matches the adrenal header at the start of a line,
	// in any case, with optional whitespace before the colon.
	adrenalHeader = regexp.MustCompile(`(?im)^[ \t]*(adrenals?[ \t]*:)`)

	// anyHeader matches an all-caps "LABEL:" header at the start of a line.
	anyHeader = regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Z0-9 /&()-]*?[ \t]*:`)
)

// Locate returns the first adrenal section in text. If several adrenal
// headers exist only the first is used. A missing header, or a header with
// no body, yields a Section with Found set to false.
func Locate(text string) types.Section {
	loc := adrenalHeader.FindStringSubmatchIndex(text)
	if loc == nil {
		return types.Section{}
	}

	title := text[loc[2]:loc[3]]
	bodyStart := loc[1]
	bodyEnd := nextHeader(text, bodyStart)

	span := trim(text, types.Span{Start: bodyStart, End: bodyEnd})
	if span.Empty() {
		return types.Section{Title: title}
	}

	return types.Section{Title: title, Span: span, Found: true}
}

// Text returns the body text of sec, or "" when the section was not found.
func Text(text string, sec types.Section) string {
	if !sec.Found {
		return ""
	}
	return text[sec.Span.Start:sec.Span.End]
}

// nextHeader returns the offset of the first header line after the line
// containing from, or len(text) if none follows.
func nextHeader(text string, from int) int {
	nl := strings.IndexByte(text[from:], '\n')
	if nl < 0 {
		return len(text)
	}
	rest := from + nl + 1

	loc := anyHeader.FindStringIndex(text[rest:])
	if loc == nil {
		return len(text)
	}
	return rest + loc[0]
}

// trim shrinks span past leading and trailing whitespace.
func trim(text string, span types.Span) types.Span {
	body := text[span.Start:span.End]
	left := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
	right := len(strings.TrimRightFunc(body, unicode.IsSpace))
	if right <= left {
		return types.Span{Start: span.Start, End: span.Start}
	}
	return types.Span{Start: span.Start + left, End: span.Start + right}
}
