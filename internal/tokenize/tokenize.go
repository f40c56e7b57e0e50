// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tokenize splits note text into word-and-punctuation tokens and
// groups them into sentences. Every token keeps its byte offsets into the
// full document so spans can be reported without translation.
package tokenize

import (
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// Tokens yields the tokens of text within span in document order. A token
// is either a run of word characters (letters, digits, underscore) or a
// run of other non-space characters, so "1.5cm." yields "1", ".", "5cm", ".".
// The sequence is lazy and may be ranged over any number of times.
func Tokens(text string, span types.Span) iter.Seq[types.Token] {
	span = clamp(span, len(text))
	return func(yield func(types.Token) bool) {
		i := span.Start
		for i < span.End {
			r, size := utf8.DecodeRuneInString(text[i:span.End])
			if unicode.IsSpace(r) {
				i += size
				continue
			}

			start := i
			word := isWordRune(r)
			for i < span.End {
				r, size = utf8.DecodeRuneInString(text[i:span.End])
				if unicode.IsSpace(r) || isWordRune(r) != word {
					break
				}
				i += size
			}

			tok := types.Token{Text: text[start:i], Span: types.Span{Start: start, End: i}}
			if !yield(tok) {
				return
			}
		}
	}
}

// All returns every token of the whole text.
func All(text string) []types.Token {
	return slices.Collect(Tokens(text, types.Span{Start: 0, End: len(text)}))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func clamp(span types.Span, n int) types.Span {
	span.Start = max(span.Start, 0)
	span.End = min(span.End, n)
	if span.End < span.Start {
		span.End = span.Start
	}
	return span
}

// Splitter groups tokens into sentences.
type Splitter struct {
	abbreviations map[string]struct{}
}

// NewSplitter creates a Splitter that will not break after any of the given
// abbreviations (case-insensitive, without the trailing period).
func NewSplitter(abbreviations []string) *Splitter {
	abbrevs := make(map[string]struct{}, len(abbreviations))
	for _, a := range abbreviations {
		a = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(a)), ".")
		if a != "" {
			abbrevs[a] = struct{}{}
		}
	}
	return &Splitter{abbreviations: abbrevs}
}

// Sentences splits text within span into sentences. A sentence ends at a
// token ending in '.', '!' or '?' that is followed by whitespace or the end
// of span, unless the period closes a known abbreviation. A blank line
// always ends a sentence. Decimal points never end a sentence because they
// are not followed by whitespace.
func (s *Splitter) Sentences(text string, span types.Span) []types.Sentence {
	span = clamp(span, len(text))

	var (
		sentences []types.Sentence
		current   []types.Token
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		sp := types.Span{Start: current[0].Span.Start, End: current[len(current)-1].Span.End}
		sentences = append(sentences, types.Sentence{
			Span:   sp,
			Text:   text[sp.Start:sp.End],
			Tokens: current,
		})
		current = nil
	}

	for tok := range Tokens(text, span) {
		if n := len(current); n > 0 && isParagraphBreak(text[current[n-1].Span.End:tok.Span.Start]) {
			flush()
		}
		current = append(current, tok)
		if s.endsSentence(text, span, current) {
			flush()
		}
	}
	flush()

	return sentences
}

func (s *Splitter) endsSentence(text string, span types.Span, toks []types.Token) bool {
	last := toks[len(toks)-1]
	if !isTerminal(last.Text) {
		return false
	}

	if last.Span.End < span.End {
		r, _ := utf8.DecodeRuneInString(text[last.Span.End:span.End])
		if !unicode.IsSpace(r) {
			return false
		}
	}

	if strings.HasPrefix(last.Text, ".") && s.isAbbreviation(toks[:len(toks)-1], last) {
		return false
	}
	return true
}

// isAbbreviation reports whether the tokens immediately before the period
// spell a known abbreviation. Adjacent tokens are joined so "e.g." is seen
// as "e.g".
func (s *Splitter) isAbbreviation(before []types.Token, period types.Token) bool {
	if len(s.abbreviations) == 0 || len(before) == 0 {
		return false
	}

	prev := before[len(before)-1]
	if prev.Span.End != period.Span.Start {
		return false
	}
	if _, ok := s.abbreviations[strings.ToLower(prev.Text)]; ok {
		return true
	}

	word := prev.Text
	end := prev.Span.Start
	for i := len(before) - 2; i >= 0 && before[i].Span.End == end; i-- {
		word = before[i].Text + word
		end = before[i].Span.Start
	}
	_, ok := s.abbreviations[strings.ToLower(word)]
	return ok
}

// isTerminal reports whether a punctuation token ends in sentence-final
// punctuation, allowing trailing closing quotes and brackets.
func isTerminal(tok string) bool {
	trimmed := strings.TrimRight(tok, `)]}"'`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		r, _ := utf8.DecodeRuneInString(tok)
		return !isWordRune(r)
	}
	return false
}

func isParagraphBreak(gap string) bool {
	return strings.Count(gap, "\n") >= 2
}
