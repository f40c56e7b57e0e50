// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger: a slog text handler writing
// to stderr, or to a size-rotated file when a log directory is configured.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const (
	currentName     = "adrenal-extract-current.log"
	defaultMaxBytes = 10 * 1024 * 1024
)

// New returns a logger for cfg. Records go to fallback unless cfg.Dir is
// set. The returned closer releases the log file and is never nil.
func New(cfg types.LogConfig, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var (
		out    = fallback
		closer io.Closer = nopCloser{}
	)
	if cfg.Dir != "" {
		rf := NewRotatingFile(cfg.Dir, cfg.MaxBytes)
		if err := rf.open(); err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = rf, rf
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RotatingFile is an io.Writer over dir/adrenal-extract-current.log. When
// a write would push the file past maxBytes, the current file is renamed
// with a UTC timestamp and a new one is started. Each Write is kept whole
// in one file.
type RotatingFile struct {
	dir      string
	maxBytes int64

	mu      sync.Mutex
	f       *os.File
	curSize int64
}

// NewRotatingFile returns a writer rotating at maxBytes (10 MiB when <= 0).
// The file is opened on first write.
func NewRotatingFile(dir string, maxBytes int64) *RotatingFile {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &RotatingFile{dir: dir, maxBytes: maxBytes}
}

// Path returns the path of the file currently written to.
func (w *RotatingFile) Path() string {
	return filepath.Join(w.dir, currentName)
}

func (w *RotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureOpen(); err != nil {
		return 0, err
	}
	if w.curSize > 0 && w.curSize+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.f.Write(p)
	w.curSize += int64(n)
	return n, err
}

func (w *RotatingFile) open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ensureOpen()
}

func (w *RotatingFile) ensureOpen() error {
	if w.f != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.curSize = 0
	if st, err := f.Stat(); err == nil {
		w.curSize = st.Size()
	}
	return nil
}

func (w *RotatingFile) rotate() error {
	_ = w.f.Close()
	w.f = nil

	// Nanosecond stamp so two rotations in one second do not collide.
	ts := time.Now().UTC().Format("20060102-150405.000000000")
	rotated := filepath.Join(w.dir, fmt.Sprintf("adrenal-extract-%s.log", ts))
	if err := os.Rename(w.Path(), rotated); err != nil {
		return fmt.Errorf("rename rotated file: %w", err)
	}
	return w.ensureOpen()
}

// Close closes the current file.
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
