//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract annotates every note in notes/ and writes CoNLL, findings, and
// phrases.txt to output/.
func Extract() error {
	mg.Deps(Init, Build)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "extract", "-i", notesDir, "-o", outputDir, "--modifiers"); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}
