// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tokenize

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

func texts(toks []types.Token) []string {
	var out []string
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"words and punctuation", "Left adrenal nodule.", []string{"Left", "adrenal", "nodule", "."}},
		{"decimal measurement", "1.1 x 0.5 cm", []string{"1", ".", "1", "x", "0", ".", "5", "cm"}},
		{"contraction", "isn't seen", []string{"isn", "'", "t", "seen"}},
		{"punctuation run", "ADRENALS: (normal).", []string{"ADRENALS", ":", "(", "normal", ")."}},
		{"empty", "", nil},
		{"whitespace only", " \n\t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(All(tt.text)))
		})
	}
}

func TestTokens_AbsoluteOffsets(t *testing.T) {
	text := "HEADER\nADRENAL: adenoma here"
	span := types.Span{Start: 16, End: len(text)}

	toks := slices.Collect(Tokens(text, span))
	require.Len(t, toks, 2)

	for _, tok := range toks {
		assert.Equal(t, tok.Text, text[tok.Span.Start:tok.Span.End])
	}
	assert.Equal(t, types.Span{Start: 16, End: 23}, toks[0].Span)
}

func TestTokens_Restartable(t *testing.T) {
	seq := Tokens("a b c", types.Span{Start: 0, End: 5})

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	var stopped []types.Token
	for tok := range seq {
		stopped = append(stopped, tok)
		break
	}
	assert.Len(t, stopped, 1)
}

func TestTokens_ClampsSpan(t *testing.T) {
	toks := slices.Collect(Tokens("abc", types.Span{Start: -4, End: 99}))
	require.Len(t, toks, 1)
	assert.Equal(t, types.Span{Start: 0, End: 3}, toks[0].Span)
}

func TestSentences(t *testing.T) {
	splitter := NewSplitter([]string{"wo", "approx", "e.g."})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple split",
			text: "Left adrenal nodule. Right is normal.",
			want: []string{"Left adrenal nodule.", "Right is normal."},
		},
		{
			name: "decimal does not split",
			text: "Nodule measuring 1.5 cm. Stable.",
			want: []string{"Nodule measuring 1.5 cm.", "Stable."},
		},
		{
			name: "abbreviation does not split",
			text: "Compared to study from 3 wo. ago the mass is stable.",
			want: []string{"Compared to study from 3 wo. ago the mass is stable."},
		},
		{
			name: "dotted abbreviation",
			text: "Lesions e.g. adenoma are common. Done.",
			want: []string{"Lesions e.g. adenoma are common.", "Done."},
		},
		{
			name: "question and exclamation",
			text: "Mass? Yes! Done",
			want: []string{"Mass?", "Yes!", "Done"},
		},
		{
			name: "blank line ends sentence",
			text: "No nodule\n\nMass present",
			want: []string{"No nodule", "Mass present"},
		},
		{
			name: "single newline keeps sentence",
			text: "Nodule measuring\n2 cm.",
			want: []string{"Nodule measuring\n2 cm."},
		},
		{
			name: "no terminal punctuation",
			text: "adenoma",
			want: []string{"adenoma"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sents := splitter.Sentences(tt.text, types.Span{Start: 0, End: len(tt.text)})
			got := make([]string, len(sents))
			for i, s := range sents {
				got[i] = s.Text
				assert.Equal(t, s.Text, tt.text[s.Span.Start:s.Span.End])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentences_Deterministic(t *testing.T) {
	text := "Adenoma. Nodule measuring 8 mm. Mass."
	splitter := NewSplitter(nil)
	span := types.Span{Start: 0, End: len(text)}

	assert.Equal(t, splitter.Sentences(text, span), splitter.Sentences(text, span))
}

func TestSentences_SpanBoundsTerminal(t *testing.T) {
	// The period at the end of the span ends the sentence even though the
	// document continues.
	text := "nodule.X"
	sents := NewSplitter(nil).Sentences(text, types.Span{Start: 0, End: 7})
	require.Len(t, sents, 1)
	assert.Equal(t, "nodule.", sents[0].Text)
}
