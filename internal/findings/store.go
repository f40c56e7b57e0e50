// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package findings indexes per-document findings files in a SQLite
// database with full-text search over the match context and sentence.
//
// The FTS5 table requires go-sqlite3 built with the sqlite_fts5 tag.
package findings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

const (
	dbFile         = "findings.db"
	findingsSuffix = "-findings.yaml"
)

// Store manages the findings SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the findings database at
// cfg.IndexDir/findings.db and creates the schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.IndexDir == "" {
		return nil, fmt.Errorf("index directory not set")
	}
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			indexed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			run_id TEXT REFERENCES runs(id),
			section_title TEXT,
			section_start INTEGER,
			section_end INTEGER,
			section_found INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS findings (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL REFERENCES documents(id),
			term TEXT NOT NULL,
			span_start INTEGER,
			span_end INTEGER,
			sentence TEXT,
			context TEXT,
			measurements TEXT,
			max_cm REAL,
			retained INTEGER,
			negated INTEGER,
			modifiers TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_document_id ON findings(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_term ON findings(term)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file_name TEXT PRIMARY KEY,
			document_id TEXT,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='findings_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE findings_fts USING fts5(sentence, context, content=findings, content_rowid=rowid)`,
			`CREATE TRIGGER findings_ai AFTER INSERT ON findings BEGIN
				INSERT INTO findings_fts(rowid, sentence, context) VALUES (new.rowid, new.sentence, new.context);
			END`,
			`CREATE TRIGGER findings_ad AFTER DELETE ON findings BEGIN
				INSERT INTO findings_fts(findings_fts, rowid, sentence, context) VALUES('delete', old.rowid, old.sentence, old.context);
			END`,
			`CREATE TRIGGER findings_au AFTER UPDATE ON findings BEGIN
				INSERT INTO findings_fts(findings_fts, rowid, sentence, context) VALUES('delete', old.rowid, old.sentence, old.context);
				INSERT INTO findings_fts(rowid, sentence, context) VALUES (new.rowid, new.sentence, new.context);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of findings files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads the *-findings.yaml files in findingsDir and loads them into
// the database. Files whose modification time matches the last indexing
// are skipped; changed files replace the document's previous findings. On
// any change it refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, findingsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(findingsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading findings directory %s: %w", findingsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), findingsSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := entry.Name()
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file_name = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(findingsDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		var ff types.FindingsFile
		if err := yaml.Unmarshal(data, &ff); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}
		if ff.DocumentID == "" {
			fmt.Fprintf(w, "failed  %s: missing document_id\n", name)
			summary.Failed++
			continue
		}

		if err := s.ingestDocument(ctx, name, &ff, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d findings)\n", ff.DocumentID, len(ff.Findings))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d findings)\n", ff.DocumentID, len(ff.Findings))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, fileName string, ff *types.FindingsFile, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE document_id = ?`, ff.DocumentID); err != nil {
		return fmt.Errorf("deleting old findings: %w", err)
	}

	var runID any
	if ff.RunID != "" {
		runID = ff.RunID
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO runs (id, indexed_at) VALUES (?, ?)`,
			ff.RunID, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, run_id, section_title, section_start, section_end, section_found)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			run_id=excluded.run_id, section_title=excluded.section_title,
			section_start=excluded.section_start, section_end=excluded.section_end,
			section_found=excluded.section_found`,
		ff.DocumentID, runID, ff.Section.Title, ff.Section.Span.Start, ff.Section.Span.End, ff.Section.Found,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO findings (id, document_id, term, span_start, span_end, sentence,
			context, measurements, max_cm, retained, negated, modifiers)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range ff.Findings {
		measurementsJSON, _ := json.Marshal(f.Measurements)
		_, err := stmt.ExecContext(ctx,
			f.ID, ff.DocumentID, f.Term, f.Span.Start, f.Span.End, f.Sentence,
			f.Context, string(measurementsJSON), f.MaxCM, f.Retained, f.Negated, f.Modifiers,
		)
		if err != nil {
			return fmt.Errorf("inserting finding %s: %w", f.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file_name, document_id, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(file_name) DO UPDATE SET
			document_id=excluded.document_id, file_mod_time=excluded.file_mod_time`,
		fileName, ff.DocumentID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
