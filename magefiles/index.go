//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Index loads output/findings into the SQLite findings index under index/.
func Index() error {
	mg.Deps(Extract)
	bin := filepath.Join(binDir, binName)
	return sh.RunV(bin, "findings", "index", "--index-dir", indexDir, filepath.Join(outputDir, "findings"))
}
