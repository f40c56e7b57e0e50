// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionConfig holds settings for the batch extraction stage.
type ExtractionConfig struct {
	// InputDir holds the clinical notes, one .txt (or extensionless) file per document.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives one CoNLL file per document plus phrases.txt and findings/.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SilenceOutside drops rows labeled O from the CoNLL output.
	SilenceOutside bool `json:"silence_outside" yaml:"silence_outside"`

	// WithModifiers appends the NEGATED and TERM_MODIFIERS columns.
	WithModifiers bool `json:"with_modifiers" yaml:"with_modifiers"`

	// Workers bounds the number of documents processed at once (default NumCPU).
	Workers int `json:"workers" yaml:"workers"`

	// PhrasesFile is the context report file name inside OutputDir (default "phrases.txt").
	PhrasesFile string `json:"phrases_file" yaml:"phrases_file"`

	// ContextWidth is the number of bytes shown on each side of a match in
	// the phrases report (default 30).
	ContextWidth int `json:"context_width" yaml:"context_width"`
}

// LexiconConfig overrides the built-in vocabulary and cue tables. Empty
// fields keep the defaults.
type LexiconConfig struct {
	// Path is an optional YAML file with the same fields.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Terms are the lesion-indicating finding words.
	Terms []string `json:"terms,omitempty" yaml:"terms,omitempty"`

	// NegationCues are words or phrases that negate a following term.
	NegationCues []string `json:"negation_cues,omitempty" yaml:"negation_cues,omitempty"`

	// Terminators close a negation scope (e.g. "but").
	Terminators []string `json:"terminators,omitempty" yaml:"terminators,omitempty"`

	// Abbreviations are words whose trailing period does not end a sentence.
	Abbreviations []string `json:"abbreviations,omitempty" yaml:"abbreviations,omitempty"`

	// NegationWindow limits the cue lookback to N tokens; 0 means the
	// whole preceding part of the sentence.
	NegationWindow int `json:"negation_window" yaml:"negation_window"`

	// ThresholdCM is the significance threshold in centimeters (default 1.0).
	ThresholdCM float64 `json:"threshold_cm,omitempty" yaml:"threshold_cm,omitempty"`

	// Label is the predicted value for matched tokens (default "Adrenal").
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// CUI and SemanticType are written for matched tokens (default "None").
	CUI          string `json:"cui,omitempty" yaml:"cui,omitempty"`
	SemanticType string `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`
}

// StoreConfig holds settings for the findings index.
type StoreConfig struct {
	// IndexDir holds findings.db and the export files.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Dir enables file logging into this directory; empty logs to stderr.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Verbose switches the level to debug.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// MaxBytes is the size at which the log file rotates (default 10 MiB).
	MaxBytes int64 `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty"`
}

// Config groups all configuration sections as they appear in
// adrenal-extract.yaml.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Lexicon    LexiconConfig    `json:"lexicon" yaml:"lexicon"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Log        LogConfig        `json:"log" yaml:"log"`
}
