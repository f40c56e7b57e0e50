// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab finds lesion-indicating vocabulary in sentences.
package vocab

import (
	"errors"
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// plural is the optional regular inflection accepted after each term.
const plural = `(?:e?s)?`

// ErrNoTerms is returned when a Matcher is built with an empty vocabulary.
var ErrNoTerms = errors.New("vocab: no terms")

// Matcher reports whole-word, case-insensitive occurrences of a fixed set
// of terms. It is safe for concurrent use.
type Matcher struct {
	terms   []string
	pattern *regexp.Regexp
}

// NewMatcher compiles terms into a single pattern. Multi-word terms match
// across any run of whitespace, and the last word also matches its regular
// plural ("nodules", "masses"). Irregular plurals must be listed as terms.
// Longer terms are tried first.
func NewMatcher(terms []string) (*Matcher, error) {
	var cleaned []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoTerms
	}

	ordered := slices.Clone(cleaned)
	slices.SortStableFunc(ordered, func(a, b string) int { return len(b) - len(a) })

	alternatives := make([]string, len(ordered))
	for i, t := range ordered {
		words := strings.Fields(t)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		alternatives[i] = strings.Join(words, `\s+`) + plural
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	if err != nil {
		return nil, err
	}
	return &Matcher{terms: cleaned, pattern: pattern}, nil
}

// Terms returns the vocabulary in the order it was supplied.
func (m *Matcher) Terms() []string {
	return slices.Clone(m.terms)
}

// Match yields every vocabulary hit in the sentence, left to right. Hits
// are not merged or deduplicated.
func (m *Matcher) Match(sent types.Sentence) iter.Seq[types.CandidateMatch] {
	return func(yield func(types.CandidateMatch) bool) {
		for _, loc := range m.pattern.FindAllStringIndex(sent.Text, -1) {
			match := types.CandidateMatch{
				Term: sent.Text[loc[0]:loc[1]],
				Span: types.Span{
					Start: sent.Span.Start + loc[0],
					End:   sent.Span.Start + loc[1],
				},
				Sentence: sent,
			}
			if !yield(match) {
				return
			}
		}
	}
}

// MatchAll collects the hits of every sentence in sentence order.
func (m *Matcher) MatchAll(sentences []types.Sentence) []types.CandidateMatch {
	var out []types.CandidateMatch
	for _, s := range sentences {
		out = slices.AppendSeq(out, m.Match(s))
	}
	return out
}
