// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package findings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uab-informatics/adrenal-extract/pkg/types"
)

// QueryOptions holds parameters for findings queries.
type QueryOptions struct {
	// Query is an FTS5 full-text search string over sentence and context.
	Query string

	// DocumentID filters by source document.
	DocumentID string

	// Term filters by matched term, case-insensitively.
	Term string

	// Negated and Retained filter on the decision flags when set.
	Negated  *bool
	Retained *bool

	// MinCM keeps findings whose largest measurement is at least this size.
	MinCM float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.DocumentID == "" && q.Term == "" &&
		q.Negated == nil && q.Retained == nil && q.MinCM == 0
}

// QueryResult is a finding with its document and run.
type QueryResult struct {
	types.FindingRecord `yaml:",inline"`
	DocumentID          string `json:"document_id" yaml:"document_id"`
	RunID               string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Retrieve queries the index. Full-text queries are ranked by relevance;
// filter-only queries are ordered by document and position.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	const columns = `f.id, f.document_id, f.term, f.span_start, f.span_end, f.sentence,
				f.context, f.measurements, f.max_cm, f.retained, f.negated, f.modifiers,
				d.run_id`

	if useFTS {
		qb.WriteString(`SELECT ` + columns + `
			FROM findings_fts
			JOIN findings f ON f.rowid = findings_fts.rowid
			LEFT JOIN documents d ON f.document_id = d.id
			WHERE findings_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + columns + `
			FROM findings f
			LEFT JOIN documents d ON f.document_id = d.id
			WHERE 1=1`)
	}

	if opts.DocumentID != "" {
		qb.WriteString(` AND f.document_id = ?`)
		args = append(args, opts.DocumentID)
	}

	if opts.Term != "" {
		qb.WriteString(` AND lower(f.term) = lower(?)`)
		args = append(args, opts.Term)
	}

	if opts.Negated != nil {
		qb.WriteString(` AND f.negated = ?`)
		args = append(args, *opts.Negated)
	}

	if opts.Retained != nil {
		qb.WriteString(` AND f.retained = ?`)
		args = append(args, *opts.Retained)
	}

	if opts.MinCM > 0 {
		qb.WriteString(` AND f.max_cm >= ?`)
		args = append(args, opts.MinCM)
	}

	if useFTS {
		qb.WriteString(` ORDER BY findings_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.document_id, f.span_start`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr               QueryResult
			measurementsJSON sql.NullString
			runID            sql.NullString
		)

		if err := rows.Scan(
			&qr.ID, &qr.DocumentID, &qr.Term, &qr.Span.Start, &qr.Span.End, &qr.Sentence,
			&qr.Context, &measurementsJSON, &qr.MaxCM, &qr.Retained, &qr.Negated, &qr.Modifiers,
			&runID,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if measurementsJSON.Valid {
			json.Unmarshal([]byte(measurementsJSON.String), &qr.Measurements)
		}
		if runID.Valid {
			qr.RunID = runID.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Stats holds aggregate counts over the index.
type Stats struct {
	Documents        int `json:"documents" yaml:"documents"`
	WithSection      int `json:"with_section" yaml:"with_section"`
	Findings         int `json:"findings" yaml:"findings"`
	RetainedFindings int `json:"retained_findings" yaml:"retained_findings"`
	NegatedFindings  int `json:"negated_findings" yaml:"negated_findings"`
	Runs             int `json:"runs" yaml:"runs"`
}

// Stats counts indexed documents, findings, and runs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT count(*) FROM documents),
			(SELECT count(*) FROM documents WHERE section_found = 1),
			(SELECT count(*) FROM findings),
			(SELECT count(*) FROM findings WHERE retained = 1),
			(SELECT count(*) FROM findings WHERE retained = 1 AND negated = 1),
			(SELECT count(*) FROM runs)`,
	).Scan(&st.Documents, &st.WithSection, &st.Findings, &st.RetainedFindings, &st.NegatedFindings, &st.Runs)
	if err != nil {
		return Stats{}, fmt.Errorf("counting findings: %w", err)
	}
	return st, nil
}
