// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package negation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uab-informatics/adrenal-extract/internal/lexicon"
	"github.com/uab-informatics/adrenal-extract/internal/tokenize"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// matchIn builds a candidate match for the first occurrence of term in
// text, placing the sentence at offset in a notional document.
func matchIn(t *testing.T, text, term string, offset int, withTokens bool) types.CandidateMatch {
	t.Helper()
	idx := strings.Index(text, term)
	require.GreaterOrEqual(t, idx, 0, "term %q not in %q", term, text)

	sent := types.Sentence{Span: types.Span{Start: offset, End: offset + len(text)}, Text: text}
	if withTokens {
		doc := strings.Repeat(" ", offset) + text
		for tok := range tokenize.Tokens(doc, sent.Span) {
			sent.Tokens = append(sent.Tokens, tok)
		}
	}
	return types.CandidateMatch{
		Term:     term,
		Span:     types.Span{Start: offset + idx, End: offset + idx + len(term)},
		Sentence: sent,
	}
}

func defaultDetector() *Detector {
	lex := lexicon.Default()
	return NewDetector(lex.NegationCues(), lex.Terminators(), lex.NegationWindow())
}

func TestIsNegated(t *testing.T) {
	d := defaultDetector()

	tests := []struct {
		name string
		text string
		term string
		want bool
	}{
		{"no before term", "no adrenal nodule", "nodule", true},
		{"capitalized cue", "No adrenal mass is seen.", "mass", true},
		{"not negated", "adrenal nodule measuring 2 cm", "nodule", false},
		{"cue after term", "nodule, no change", "nodule", false},
		{"multi word cue", "Negative for adrenal metastasis.", "metastasis", true},
		{"without", "Adrenals without lesion.", "lesion", true},
		{"terminator closes scope", "No mass but a nodule is present.", "nodule", false},
		{"term before terminator still negated", "No mass but a nodule is present.", "mass", true},
		{"cue word inside other word", "Nothingness nodule", "nodule", false},
		{"denies", "Patient denies known adenoma.", "adenoma", true},
		{"nor", "Neither hyperplasia nor nodule.", "nodule", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, withTokens := range []bool{true, false} {
				m := matchIn(t, tt.text, tt.term, 40, withTokens)
				assert.Equal(t, tt.want, d.IsNegated(m), "withTokens=%v", withTokens)
			}
		})
	}
}

func TestIsNegated_Window(t *testing.T) {
	lex := lexicon.Default()
	d := NewDetector(lex.NegationCues(), lex.Terminators(), 2)

	assert.True(t, d.IsNegated(matchIn(t, "no adrenal nodule", "nodule", 0, true)))
	assert.False(t, d.IsNegated(matchIn(t, "no clear left adrenal nodule", "nodule", 0, true)))
}

func TestDetect(t *testing.T) {
	d := defaultDetector()

	neg := d.Detect(matchIn(t, "no adrenal nodule", "nodule", 0, true))
	assert.True(t, neg.Negated)
	assert.Equal(t, types.DefaultSubject, neg.Subject)
	assert.False(t, neg.Conditional)
	assert.False(t, neg.RuleOut)
	assert.Equal(t, "Negation=true;Subject=patient;Conditional=false;Rule_out=false", neg.String())

	pos := d.Detect(matchIn(t, "adrenal nodule measuring 2 cm", "nodule", 0, true))
	assert.Equal(t, types.DefaultModifiers(), pos)
	assert.Equal(t, "Negation=false;Subject=patient;Conditional=false;Rule_out=false", pos.String())
}

func TestNewDetector_IgnoresBlankCues(t *testing.T) {
	d := NewDetector([]string{"", "  "}, nil, -3)
	assert.Empty(t, d.cues)
	assert.Zero(t, d.window)
	assert.False(t, d.IsNegated(matchIn(t, "no nodule", "nodule", 0, true)))
}
