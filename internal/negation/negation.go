// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package negation decides whether a matched term is negated by a cue
// earlier in its sentence ("no adrenal nodule", "negative for mass").
package negation

import (
	"slices"
	"strings"

	"github.com/uab-informatics/adrenal-extract/internal/tokenize"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// Detector looks backwards from a matched term for negation cues. A scope
// terminator between the cue and the term ("no mass but a nodule") ends
// the negation. It is safe for concurrent use.
type Detector struct {
	cues        [][]string
	terminators map[string]struct{}
	window      int
}

// NewDetector builds a Detector. Cues may be multi-word. window limits the
// lookback to that many tokens before the term; 0 searches the whole
// preceding part of the sentence.
func NewDetector(cues, terminators []string, window int) *Detector {
	d := &Detector{
		terminators: make(map[string]struct{}, len(terminators)),
		window:      max(window, 0),
	}
	for _, c := range cues {
		if words := lowerTokens(c); len(words) > 0 {
			d.cues = append(d.cues, words)
		}
	}
	for _, t := range terminators {
		d.terminators[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return d
}

func lowerTokens(s string) []string {
	var words []string
	for _, tok := range tokenize.All(s) {
		words = append(words, strings.ToLower(tok.Text))
	}
	return words
}

// Detect returns the modifiers for match. Only negation is detected; the
// other dimensions keep their defaults.
func (d *Detector) Detect(match types.CandidateMatch) types.Modifiers {
	mods := types.DefaultModifiers()
	mods.Negated = d.IsNegated(match)
	return mods
}

// IsNegated reports whether a cue lies wholly before the match inside its
// sentence, within the window, with no terminator in between.
func (d *Detector) IsNegated(match types.CandidateMatch) bool {
	toks := sentenceTokens(match.Sentence)

	termIdx := slices.IndexFunc(toks, func(t types.Token) bool {
		return t.Span.End > match.Span.Start
	})
	if termIdx < 0 {
		termIdx = len(toks)
	}

	words := make([]string, termIdx)
	for i := range termIdx {
		words[i] = strings.ToLower(toks[i].Text)
	}

	lo := 0
	if d.window > 0 {
		lo = max(termIdx-d.window, 0)
	}

	for i := termIdx - 1; i >= lo; i-- {
		if _, ok := d.terminators[words[i]]; ok {
			return false
		}
		for _, cue := range d.cues {
			if i+len(cue) <= termIdx && slices.Equal(words[i:i+len(cue)], cue) {
				return true
			}
		}
	}
	return false
}

// sentenceTokens returns the sentence's tokens, tokenizing its text when
// the caller built the sentence without them.
func sentenceTokens(sent types.Sentence) []types.Token {
	if len(sent.Tokens) > 0 {
		return sent.Tokens
	}
	toks := tokenize.All(sent.Text)
	for i := range toks {
		toks[i].Span.Start += sent.Span.Start
		toks[i].Span.End += sent.Span.Start
	}
	return toks
}
