// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"github.com/uab-informatics/adrenal-extract/internal/tokenize"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const (
	negatedTrue  = "True"
	negatedFalse = "False"
)

// assemble labels every document token. Tokens overlapping a retained
// finding get the lexicon label and the finding's modifiers; all others get
// the outside record. Findings must be in document order, which the
// pipeline guarantees.
func (p *Pipeline) assemble(text string, findings []types.Finding) []types.AnnotatedRecord {
	var retained []types.Finding
	for _, f := range findings {
		if f.Retained {
			retained = append(retained, f)
		}
	}

	var records []types.AnnotatedRecord
	j := 0
	for tok := range tokenize.Tokens(text, types.Span{Start: 0, End: len(text)}) {
		for j < len(retained) && retained[j].Match.Span.End <= tok.Span.Start {
			j++
		}
		if j < len(retained) && retained[j].Match.Span.Overlaps(tok.Span) {
			records = append(records, p.matchedRecord(tok, retained[j].Modifiers))
			continue
		}
		records = append(records, types.OutsideRecord(tok))
	}
	return records
}

func (p *Pipeline) matchedRecord(tok types.Token, mods types.Modifiers) types.AnnotatedRecord {
	negated := negatedFalse
	if mods.Negated {
		negated = negatedTrue
	}
	return types.AnnotatedRecord{
		Token:         tok.Text,
		Gold:          types.None,
		Predicted:     p.lex.Label(),
		Confidence:    types.None,
		Span:          tok.Span,
		CUI:           p.lex.CUI(),
		SemanticType:  p.lex.SemanticType(),
		Negated:       negated,
		TermModifiers: mods.String(),
	}
}
