// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
	"strings"
)

// Document is one clinical note as read from disk. It is never mutated
// after construction; every stage reads it by reference.
type Document struct {
	// ID identifies the note, normally its source filename.
	ID string `json:"id" yaml:"id"`

	// Text is the full raw note text.
	Text string `json:"-" yaml:"-"`
}

// Span is a half-open byte range [Start, End) into Document.Text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Overlaps reports whether s and o share at least one byte.
// Empty spans overlap nothing.
func (s Span) Overlaps(o Span) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// String renders the span in the start:end form used by the output format.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// Section is the adrenal findings block located inside a document.
// When Found is false the document has no adrenal section and Span is zero.
type Section struct {
	// Title is the header text that introduced the section (e.g. "ADRENALS:").
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Span is the section body, excluding the header, trimmed of surrounding whitespace.
	Span Span `json:"span" yaml:"span"`

	// Found is false when no adrenal header exists.
	Found bool `json:"found" yaml:"found"`
}

// Token is a word or punctuation run with document-relative offsets.
type Token struct {
	Text string `json:"text" yaml:"text"`
	Span Span   `json:"span" yaml:"span"`
}

// Sentence is an ordered run of tokens bounded by sentence-terminal
// punctuation. Text is the document text covered by Span.
type Sentence struct {
	Span   Span    `json:"span" yaml:"span"`
	Text   string  `json:"text" yaml:"text"`
	Tokens []Token `json:"-" yaml:"-"`
}

// Unit is a supported length unit for measurements.
type Unit string

const (
	UnitCM Unit = "cm"
	UnitMM Unit = "mm"
)

// ToCM converts v expressed in u to centimeters.
func (u Unit) ToCM(v float64) float64 {
	if u == UnitMM {
		return v / 10
	}
	return v
}

// Measurement is a size expression such as "5 cm" or "5.0 x 8.0 mm".
// Dims holds one to three non-negative values in source order; the first
// is always present, the second is the optional height of a width x height
// pair, and a third (depth) is accepted when the note gives one.
type Measurement struct {
	Text string    `json:"text" yaml:"text"`
	Span Span      `json:"span" yaml:"span"`
	Dims []float64 `json:"dims" yaml:"dims"`
	Unit Unit      `json:"unit" yaml:"unit"`
}

// MaxCM returns the largest dimension normalized to centimeters.
func (m Measurement) MaxCM() float64 {
	largest := math.Inf(-1)
	for _, d := range m.Dims {
		if cm := m.Unit.ToCM(d); cm > largest {
			largest = cm
		}
	}
	if math.IsInf(largest, -1) {
		return 0
	}
	return largest
}

// CandidateMatch is a vocabulary hit before significance and negation
// have been resolved.
type CandidateMatch struct {
	// Term is the matched text exactly as it appears in the document.
	Term string `json:"term" yaml:"term"`

	// Span locates Term in the document.
	Span Span `json:"span" yaml:"span"`

	// Sentence is the sentence that contains the match.
	Sentence Sentence `json:"sentence" yaml:"sentence"`
}

// Modifiers holds the assertion context attached to a match. Only negation
// is detected; the remaining dimensions carry their defaults.
type Modifiers struct {
	Negated     bool   `json:"negated" yaml:"negated"`
	Subject     string `json:"subject" yaml:"subject"`
	Conditional bool   `json:"conditional" yaml:"conditional"`
	RuleOut     bool   `json:"rule_out" yaml:"rule_out"`
}

// DefaultSubject is the subject assumed for every assertion.
const DefaultSubject = "patient"

// DefaultModifiers returns the "not negated" modifier set.
func DefaultModifiers() Modifiers {
	return Modifiers{Subject: DefaultSubject}
}

// String encodes the modifiers for the TERM_MODIFIERS column. The result
// never contains whitespace.
func (m Modifiers) String() string {
	subject := m.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	parts := []string{
		fmt.Sprintf("Negation=%t", m.Negated),
		"Subject=" + strings.ReplaceAll(subject, " ", "_"),
		fmt.Sprintf("Conditional=%t", m.Conditional),
		fmt.Sprintf("Rule_out=%t", m.RuleOut),
	}
	return strings.Join(parts, ";")
}

// Finding records the full decision trail for one candidate match: the
// measurements seen in its sentence, whether any was significant, whether
// the match survived, and its modifiers.
type Finding struct {
	Match        CandidateMatch `json:"match" yaml:"match"`
	Measurements []Measurement  `json:"measurements,omitempty" yaml:"measurements,omitempty"`
	Significant  bool           `json:"significant" yaml:"significant"`
	Retained     bool           `json:"retained" yaml:"retained"`
	Modifiers    Modifiers      `json:"modifiers" yaml:"modifiers"`
}

// DocumentResult is everything the pipeline produces for one document.
type DocumentResult struct {
	DocumentID string            `json:"document_id" yaml:"document_id"`
	Section    Section           `json:"section" yaml:"section"`
	Findings   []Finding         `json:"findings" yaml:"findings"`
	Records    []AnnotatedRecord `json:"-" yaml:"-"`
}

// Retained returns the findings that survived the significance decision.
func (r DocumentResult) Retained() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Retained {
			out = append(out, f)
		}
	}
	return out
}
