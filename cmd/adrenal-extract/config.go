// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/uab-informatics/adrenal-extract/internal/annotate"
	"github.com/uab-informatics/adrenal-extract/internal/lexicon"
	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// Viper keys mirror the yaml tags in pkg/types/config.go.
func init() {
	viper.SetDefault("extraction.output_dir", "output")
	viper.SetDefault("extraction.phrases_file", "phrases.txt")
	viper.SetDefault("extraction.context_width", 30)
	viper.SetDefault("store.index_dir", "index")
	viper.SetDefault("store.max_results", 20)
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func extractionConfig() types.ExtractionConfig {
	return types.ExtractionConfig{
		InputDir:       viper.GetString("extraction.input_dir"),
		OutputDir:      viper.GetString("extraction.output_dir"),
		SilenceOutside: viper.GetBool("extraction.silence_outside"),
		WithModifiers:  viper.GetBool("extraction.with_modifiers"),
		Workers:        viper.GetInt("extraction.workers"),
		PhrasesFile:    viper.GetString("extraction.phrases_file"),
		ContextWidth:   viper.GetInt("extraction.context_width"),
	}
}

func lexiconConfig() types.LexiconConfig {
	return types.LexiconConfig{
		Path:           viper.GetString("lexicon.path"),
		Terms:          viper.GetStringSlice("lexicon.terms"),
		NegationCues:   viper.GetStringSlice("lexicon.negation_cues"),
		Terminators:    viper.GetStringSlice("lexicon.terminators"),
		Abbreviations:  viper.GetStringSlice("lexicon.abbreviations"),
		NegationWindow: viper.GetInt("lexicon.negation_window"),
		ThresholdCM:    viper.GetFloat64("lexicon.threshold_cm"),
		Label:          viper.GetString("lexicon.label"),
		CUI:            viper.GetString("lexicon.cui"),
		SemanticType:   viper.GetString("lexicon.semantic_type"),
	}
}

func storeConfig() types.StoreConfig {
	return types.StoreConfig{
		IndexDir:   viper.GetString("store.index_dir"),
		MaxResults: viper.GetInt("store.max_results"),
	}
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Dir:      viper.GetString("log.dir"),
		Verbose:  viper.GetBool("log.verbose"),
		MaxBytes: viper.GetInt64("log.max_bytes"),
	}
}

// newPipeline builds the annotator from the configured lexicon.
func newPipeline() (*annotate.Pipeline, error) {
	lex, err := lexicon.New(lexiconConfig())
	if err != nil {
		return nil, err
	}
	return annotate.New(lex, annotate.WithLogger(logger))
}
