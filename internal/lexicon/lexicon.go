// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lexicon holds the fixed vocabulary and cue tables used by the
// pipeline. A Lexicon is built once from the defaults, an optional YAML
// file, and configuration overrides, then handed by value to each pipeline.
// Nothing in this package keeps mutable package-level state.
package lexicon

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// ErrInvalidLexicon is returned when a lexicon fails validation.
var ErrInvalidLexicon = errors.New("invalid lexicon")

const (
	// DefaultLabel is the predicted value written for matched tokens.
	DefaultLabel = "Adrenal"

	// DefaultThresholdCM is the significance threshold.
	DefaultThresholdCM = 1.0
)

// Lexicon is an immutable set of tables. Accessors return copies.
type Lexicon struct {
	terms          []string
	negationCues   []string
	terminators    []string
	abbreviations  []string
	negationWindow int
	thresholdCM    float64
	label          string
	cui            string
	semanticType   string
}

func defaultTerms() []string {
	return []string{"adenoma", "lesion", "metastasis", "metastases", "nodule", "nodularity", "mass", "measuring"}
}

func defaultNegationCues() []string {
	return []string{
		"not", "no", "without", "never", "none", "nobody", "nowhere", "nothing", "neither", "nor",
		"negative for", "denies", "denied", "free of", "absence of",
	}
}

func defaultTerminators() []string {
	return []string{"but", "however", "although", "except", "apart"}
}

func defaultAbbreviations() []string {
	return []string{
		"wo", "w", "approx", "appr", "dr", "mr", "mrs", "ms", "vs", "e.g", "i.e",
		"cf", "fig", "pt", "hx", "incl", "max", "min", "prox", "st",
	}
}

// Default returns the built-in lexicon.
func Default() Lexicon {
	return Lexicon{
		terms:         defaultTerms(),
		negationCues:  defaultNegationCues(),
		terminators:   defaultTerminators(),
		abbreviations: defaultAbbreviations(),
		thresholdCM:   DefaultThresholdCM,
		label:         DefaultLabel,
		cui:           types.None,
		semanticType:  types.None,
	}
}

// New builds a lexicon from the defaults, then the YAML file at cfg.Path
// (if any), then the non-empty fields of cfg. The result is validated.
func New(cfg types.LexiconConfig) (Lexicon, error) {
	lex := Default()

	if cfg.Path != "" {
		fileCfg, err := readFile(cfg.Path)
		if err != nil {
			return Lexicon{}, err
		}
		lex = lex.apply(fileCfg)
	}

	lex = lex.apply(cfg)
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

func readFile(path string) (types.LexiconConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.LexiconConfig{}, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	var cfg types.LexiconConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.LexiconConfig{}, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	return cfg, nil
}

func (l Lexicon) apply(cfg types.LexiconConfig) Lexicon {
	if len(cfg.Terms) > 0 {
		l.terms = normalize(cfg.Terms)
	}
	if len(cfg.NegationCues) > 0 {
		l.negationCues = normalize(cfg.NegationCues)
	}
	if len(cfg.Terminators) > 0 {
		l.terminators = normalize(cfg.Terminators)
	}
	if len(cfg.Abbreviations) > 0 {
		l.abbreviations = normalize(cfg.Abbreviations)
	}
	if cfg.NegationWindow != 0 {
		l.negationWindow = cfg.NegationWindow
	}
	if cfg.ThresholdCM != 0 {
		l.thresholdCM = cfg.ThresholdCM
	}
	if cfg.Label != "" {
		l.label = cfg.Label
	}
	if cfg.CUI != "" {
		l.cui = cfg.CUI
	}
	if cfg.SemanticType != "" {
		l.semanticType = cfg.SemanticType
	}
	return l
}

// normalize lower-cases, trims, collapses inner whitespace, and drops
// empty and duplicate entries while keeping first-seen order.
func normalize(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Join(strings.Fields(strings.ToLower(w)), " ")
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Validate checks the invariants the pipeline relies on.
func (l Lexicon) Validate() error {
	var problems []string
	if len(l.terms) == 0 {
		problems = append(problems, "no vocabulary terms")
	}
	if l.thresholdCM <= 0 {
		problems = append(problems, fmt.Sprintf("threshold %.2f cm must be positive", l.thresholdCM))
	}
	if l.negationWindow < 0 {
		problems = append(problems, fmt.Sprintf("negation window %d must not be negative", l.negationWindow))
	}
	for _, field := range []struct{ name, value string }{
		{"label", l.label}, {"cui", l.cui}, {"semantic type", l.semanticType},
	} {
		if field.value == "" || strings.ContainsFunc(field.value, isSpace) {
			problems = append(problems, fmt.Sprintf("%s %q must be a single non-empty word", field.name, field.value))
		}
	}
	if l.label == types.OutsideLabel {
		problems = append(problems, fmt.Sprintf("label must differ from the outside label %q", types.OutsideLabel))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLexicon, strings.Join(problems, "; "))
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Terms returns the finding vocabulary.
func (l Lexicon) Terms() []string { return slices.Clone(l.terms) }

// NegationCues returns the negation cue words and phrases.
func (l Lexicon) NegationCues() []string { return slices.Clone(l.negationCues) }

// Terminators returns the words that close a negation scope.
func (l Lexicon) Terminators() []string { return slices.Clone(l.terminators) }

// Abbreviations returns the words whose trailing period does not end a sentence.
func (l Lexicon) Abbreviations() []string { return slices.Clone(l.abbreviations) }

// NegationWindow returns the cue lookback in tokens; 0 means the whole sentence prefix.
func (l Lexicon) NegationWindow() int { return l.negationWindow }

// ThresholdCM returns the significance threshold in centimeters.
func (l Lexicon) ThresholdCM() float64 { return l.thresholdCM }

// Label returns the predicted value for matched tokens.
func (l Lexicon) Label() string { return l.label }

// CUI returns the concept identifier written for matched tokens.
func (l Lexicon) CUI() string { return l.cui }

// SemanticType returns the semantic type written for matched tokens.
func (l Lexicon) SemanticType() string { return l.semanticType }

// Config returns the lexicon as a LexiconConfig, suitable for writing a
// starter YAML file.
func (l Lexicon) Config() types.LexiconConfig {
	return types.LexiconConfig{
		Terms:          l.Terms(),
		NegationCues:   l.NegationCues(),
		Terminators:    l.Terminators(),
		Abbreviations:  l.Abbreviations(),
		NegationWindow: l.negationWindow,
		ThresholdCM:    l.thresholdCM,
		Label:          l.label,
		CUI:            l.cui,
		SemanticType:   l.semanticType,
	}
}
