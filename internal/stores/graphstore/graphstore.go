// Package graphstore holds the case citation graph in SQLite.
package graphstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"legal-rag-workers/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id      TEXT PRIMARY KEY,
	court        TEXT NOT NULL DEFAULT '',
	court_level  INTEGER NOT NULL DEFAULT 1,
	decided_year INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS citations (
	citing_id TEXT NOT NULL,
	cited_id  TEXT NOT NULL,
	PRIMARY KEY (citing_id, cited_id)
);
CREATE INDEX IF NOT EXISTS idx_citations_cited ON citations(cited_id);
`

type Store struct {
	db *sql.DB
}

// New creates the schema if missing.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create citation schema: %w", err)
	}
	return &Store{db: db}, nil
}

// UpsertCase records court metadata for a case.
func (s *Store) UpsertCase(ctx context.Context, info models.CaseInfo) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO cases (case_id, court, court_level, decided_year) VALUES (?, ?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET court = excluded.court, court_level = excluded.court_level,
		decided_year = excluded.decided_year`,
		info.CaseID, info.Court, info.CourtLevel, info.DecidedYear)
	if err != nil {
		return fmt.Errorf("upsert case %s: %w", info.CaseID, err)
	}
	return nil
}

// AddCitation records that citing cites cited. Self-citations are ignored.
func (s *Store) AddCitation(ctx context.Context, citing, cited string) error {
	if citing == cited {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO citations (citing_id, cited_id) VALUES (?, ?)`, citing, cited)
	if err != nil {
		return fmt.Errorf("add citation %s -> %s: %w", citing, cited, err)
	}
	return nil
}

// CaseExists reports whether the case has metadata or appears on either end of an edge.
func (s *Store) CaseExists(ctx context.Context, caseID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cases WHERE case_id = ?)
		OR EXISTS (SELECT 1 FROM citations WHERE citing_id = ? OR cited_id = ?)`,
		caseID, caseID, caseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("case exists %s: %w", caseID, err)
	}
	return exists, nil
}

// Neighbors returns every case within maxHops of caseID in direction, each at its
// shortest hop, ordered by hop then id. caseID itself is never returned.
func (s *Store) Neighbors(ctx context.Context, caseID string, direction models.CitationDirection, maxHops int) ([]models.CitationNode, error) {
	if maxHops < 1 {
		return nil, nil
	}

	from, to := "citing_id", "cited_id"
	if direction == models.DirectionCitedBy {
		from, to = "cited_id", "citing_id"
	}

	query := fmt.Sprintf(`WITH RECURSIVE walk(id, hop) AS (
		SELECT %[2]s, 1 FROM citations WHERE %[1]s = ?
		UNION
		SELECT c.%[2]s, w.hop + 1 FROM citations c JOIN walk w ON c.%[1]s = w.id WHERE w.hop < ?
	)
	SELECT id, MIN(hop) AS hop FROM walk WHERE id <> ? GROUP BY id ORDER BY hop, id`, from, to)

	rows, err := s.db.QueryContext(ctx, query, caseID, maxHops, caseID)
	if err != nil {
		return nil, fmt.Errorf("neighbors %s: %w", caseID, err)
	}
	defer rows.Close()

	var out []models.CitationNode
	for rows.Next() {
		var n models.CitationNode
		if err := rows.Scan(&n.CaseID, &n.Hop); err != nil {
			return nil, fmt.Errorf("neighbors scan: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CaseInfo returns metadata for the known cases among ids. Unknown cases are
// returned with court level 1 and no decision year.
func (s *Store) CaseInfo(ctx context.Context, ids []string) (map[string]models.CaseInfo, error) {
	out := make(map[string]models.CaseInfo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
		out[id] = models.CaseInfo{CaseID: id, CourtLevel: 1}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, court, court_level, decided_year FROM cases WHERE case_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("case info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info models.CaseInfo
		if err := rows.Scan(&info.CaseID, &info.Court, &info.CourtLevel, &info.DecidedYear); err != nil {
			return nil, fmt.Errorf("case info scan: %w", err)
		}
		out[info.CaseID] = info
	}
	return out, rows.Err()
}
