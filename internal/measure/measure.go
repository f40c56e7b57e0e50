// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package measure parses size expressions such as "8 mm", "1.1 x 0.5 cm",
// "12-8 mm" or "2 by 3 centimeters" and decides whether a sentence's measurements
// reach the clinical significance threshold.
package measure

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const (
	number    = `(?:\d+(?:\.\d+)?|\.\d+)`
	separator = `\s*(?:[x×-]|by|and)\s*`
	unit      = `(centimeters?|millimeters?|cm|mm)`

	// epsilon absorbs float error at the threshold so 10 mm == 1.0 cm.
	epsilon = 1e-9
)

var (
	// expression matches NUMBER [x NUMBER [x NUMBER]] UNIT. The leading
	// group stops a match from starting inside a word or a longer number;
	// group 1 holds the dimensions and group 2 the unit.
	expression = regexp.MustCompile(`(?i)(?:^|[^\w.])(` + number + `(?:` + separator + number + `){0,2})\s*` + unit + `\b`)

	numberRe = regexp.MustCompile(number)
)

// Parser extracts measurements and applies the significance threshold.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	thresholdCM float64
}

// NewParser creates a Parser with the given threshold in centimeters. A
// non-positive threshold falls back to 1.0 cm.
func NewParser(thresholdCM float64) *Parser {
	if thresholdCM <= 0 {
		thresholdCM = 1.0
	}
	return &Parser{thresholdCM: thresholdCM}
}

// ThresholdCM returns the threshold in use.
func (p *Parser) ThresholdCM() float64 {
	return p.thresholdCM
}

// Parse returns the measurements in the sentence in text order, with
// document-relative spans. Fragments that do not fit the grammar are
// skipped.
func (p *Parser) Parse(sent types.Sentence) []types.Measurement {
	return p.ParseText(sent.Text, sent.Span.Start)
}

// ParseText is Parse for raw text whose first byte sits at offset in the
// document.
func (p *Parser) ParseText(text string, offset int) []types.Measurement {
	var out []types.Measurement
	for _, loc := range expression.FindAllStringSubmatchIndex(text, -1) {
		dimsText := text[loc[2]:loc[3]]
		unitText := text[loc[4]:loc[5]]

		dims, ok := parseDims(dimsText)
		if !ok {
			continue
		}

		out = append(out, types.Measurement{
			Text: text[loc[2]:loc[5]],
			Span: types.Span{Start: offset + loc[2], End: offset + loc[5]},
			Dims: dims,
			Unit: parseUnit(unitText),
		})
	}
	return out
}

func parseDims(s string) ([]float64, bool) {
	raw := numberRe.FindAllString(s, -1)
	if len(raw) == 0 {
		return nil, false
	}
	dims := make([]float64, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || v < 0 {
			return nil, false
		}
		dims = append(dims, v)
	}
	return dims, true
}

func parseUnit(s string) types.Unit {
	if strings.HasPrefix(strings.ToLower(s), "m") {
		return types.UnitMM
	}
	return types.UnitCM
}

// Significant reports whether any dimension of m reaches the threshold.
func (p *Parser) Significant(m types.Measurement) bool {
	return m.MaxCM()+epsilon >= p.thresholdCM
}

// Decision is the outcome of evaluating a sentence's measurements.
type Decision struct {
	// Measurements are the measurements the decision was based on.
	Measurements []types.Measurement

	// Significant is true when at least one measurement reaches the threshold.
	Significant bool

	// Retained is false only when measurements exist and all are below the
	// threshold. A sentence without measurements keeps its matches.
	Retained bool
}

// Decide evaluates the measurements of one sentence.
func (p *Parser) Decide(ms []types.Measurement) Decision {
	d := Decision{Measurements: ms}
	for _, m := range ms {
		if p.Significant(m) {
			d.Significant = true
			break
		}
	}
	d.Retained = len(ms) == 0 || d.Significant
	return d
}

// Evaluate parses the sentence and decides in one step.
func (p *Parser) Evaluate(sent types.Sentence) Decision {
	return p.Decide(p.Parse(sent))
}
