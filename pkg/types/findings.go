// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FindingRecord is the flattened, serializable form of a Finding as written
// to the per-document findings file and indexed by the findings store.
type FindingRecord struct {
	// ID is a stable identifier derived from document ID, span, and term.
	ID string `json:"id" yaml:"id"`

	// Term is the matched vocabulary text.
	Term string `json:"term" yaml:"term"`

	// Span locates Term in the source document.
	Span Span `json:"span" yaml:"span"`

	// Sentence is the text of the containing sentence.
	Sentence string `json:"sentence" yaml:"sentence"`

	// Context is the surrounding text with the term marked as >>term<<.
	Context string `json:"context" yaml:"context"`

	// Measurements lists the size expressions found in the sentence.
	Measurements []string `json:"measurements,omitempty" yaml:"measurements,omitempty"`

	// MaxCM is the largest measured dimension in centimeters, 0 when none.
	MaxCM float64 `json:"max_cm" yaml:"max_cm"`

	// Retained is false when every measurement was below threshold.
	Retained bool `json:"retained" yaml:"retained"`

	// Negated is true when a negation cue precedes the term.
	Negated bool `json:"negated" yaml:"negated"`

	// Modifiers is the TERM_MODIFIERS encoding.
	Modifiers string `json:"modifiers" yaml:"modifiers"`
}

// FindingsFile holds the findings of one document from one extraction run.
type FindingsFile struct {
	// RunID identifies the batch run that produced the file.
	RunID string `json:"run_id" yaml:"run_id"`

	// DocumentID is the source filename.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Section is the located adrenal section.
	Section Section `json:"section" yaml:"section"`

	// Findings lists every candidate match, retained or not.
	Findings []FindingRecord `json:"findings" yaml:"findings"`
}
