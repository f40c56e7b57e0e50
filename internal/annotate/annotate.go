// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate runs the adrenal extraction pipeline over one document:
// section location, sentence splitting, vocabulary matching, measurement
// significance, negation detection, and assembly of per-token output
// records.
package annotate

import (
	"fmt"
	"log/slog"

	"github.com/uab-informatics/adrenal-extract/internal/lexicon"
	"github.com/uab-informatics/adrenal-extract/internal/measure"
	"github.com/uab-informatics/adrenal-extract/internal/negation"
	"github.com/uab-informatics/adrenal-extract/internal/section"
	"github.com/uab-informatics/adrenal-extract/internal/tokenize"
	"github.com/uab-informatics/adrenal-extract/internal/vocab"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// Pipeline holds the compiled tables for one lexicon. It keeps no
// per-document state, so one Pipeline may process many documents
// concurrently.
type Pipeline struct {
	lex      lexicon.Lexicon
	splitter *tokenize.Splitter
	matcher  *vocab.Matcher
	parser   *measure.Parser
	detector *negation.Detector
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for debug traces of match decisions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a Pipeline from lex.
func New(lex lexicon.Lexicon, opts ...Option) (*Pipeline, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}

	matcher, err := vocab.NewMatcher(lex.Terms())
	if err != nil {
		return nil, fmt.Errorf("building matcher: %w", err)
	}

	p := &Pipeline{
		lex:      lex,
		splitter: tokenize.NewSplitter(lex.Abbreviations()),
		matcher:  matcher,
		parser:   measure.NewParser(lex.ThresholdCM()),
		detector: negation.NewDetector(lex.NegationCues(), lex.Terminators(), lex.NegationWindow()),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Lexicon returns the lexicon the pipeline was built from.
func (p *Pipeline) Lexicon() lexicon.Lexicon {
	return p.lex
}

// Process runs every stage over doc. It never fails: a document without an
// adrenal section, or an empty document, simply has no findings. The
// result always carries one record per document token.
func (p *Pipeline) Process(doc types.Document) types.DocumentResult {
	res := types.DocumentResult{
		DocumentID: doc.ID,
		Section:    section.Locate(doc.Text),
	}

	if res.Section.Found {
		res.Findings = p.findings(doc, res.Section)
	} else {
		p.logger.Debug("no adrenal section", "document", doc.ID)
	}

	res.Records = p.assemble(doc.Text, res.Findings)
	return res
}

func (p *Pipeline) findings(doc types.Document, sec types.Section) []types.Finding {
	var out []types.Finding

	for _, sent := range p.splitter.Sentences(doc.Text, sec.Span) {
		var decision measure.Decision
		evaluated := false

		for match := range p.matcher.Match(sent) {
			if !evaluated {
				decision = p.parser.Evaluate(sent)
				evaluated = true
			}

			f := types.Finding{
				Match:        match,
				Measurements: decision.Measurements,
				Significant:  decision.Significant,
				Retained:     decision.Retained,
				Modifiers:    types.DefaultModifiers(),
			}

			if f.Retained {
				f.Modifiers = p.detector.Detect(match)
			} else {
				p.logger.Debug("match below size threshold",
					"document", doc.ID, "term", match.Term, "span", match.Span.String(),
					"measurements", len(decision.Measurements))
			}

			out = append(out, f)
		}
	}

	return out
}
