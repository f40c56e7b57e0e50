// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// None is the literal written for unset optional columns.
const None = "None"

// OutsideLabel is the predicted value for tokens that are not part of any
// retained match.
const OutsideLabel = "O"

// AnnotatedRecord is one output row: a document token with its label and
// annotation columns. All string fields hold None when unset; records are
// never modified after the assembler emits them.
type AnnotatedRecord struct {
	Token         string `json:"token" yaml:"token"`
	Gold          string `json:"gold" yaml:"gold"`
	Predicted     string `json:"predicted" yaml:"predicted"`
	Confidence    string `json:"confidence" yaml:"confidence"`
	Span          Span   `json:"span" yaml:"span"`
	CUI           string `json:"cui" yaml:"cui"`
	SemanticType  string `json:"semantic_type" yaml:"semantic_type"`
	Negated       string `json:"negated" yaml:"negated"`
	TermModifiers string `json:"term_modifiers" yaml:"term_modifiers"`
}

// OutsideRecord builds the default record for a token outside any match.
func OutsideRecord(tok Token) AnnotatedRecord {
	return AnnotatedRecord{
		Token:         tok.Text,
		Gold:          None,
		Predicted:     OutsideLabel,
		Confidence:    None,
		Span:          tok.Span,
		CUI:           None,
		SemanticType:  None,
		Negated:       None,
		TermModifiers: None,
	}
}

// IsOutside reports whether the record carries the outside label.
func (r AnnotatedRecord) IsOutside() bool {
	return r.Predicted == OutsideLabel
}
