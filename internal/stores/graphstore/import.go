package graphstore

import (
	"context"
	"fmt"

	"legal-rag-workers/internal/models"
)

// Citation is one directed edge of a citation dataset.
type Citation struct {
	Citing string `json:"citing"`
	Cited  string `json:"cited"`
}

// Dataset is the file format read by the citation loader.
type Dataset struct {
	Cases     []models.CaseInfo `json:"cases"`
	Citations []Citation        `json:"citations"`
}

// ImportStats counts what an import wrote.
type ImportStats struct {
	Cases     int
	Citations int
	Skipped   int
}

// Import writes a dataset in a single transaction. Self-citations and edges
// with an empty end are skipped; an existing edge is left as is.
func (s *Store) Import(ctx context.Context, ds Dataset) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, c := range ds.Cases {
		if c.CaseID == "" {
			stats.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO cases (case_id, court, court_level, decided_year) VALUES (?, ?, ?, ?)
			ON CONFLICT(case_id) DO UPDATE SET court = excluded.court, court_level = excluded.court_level,
			decided_year = excluded.decided_year`,
			c.CaseID, c.Court, c.CourtLevel, c.DecidedYear); err != nil {
			return stats, fmt.Errorf("import case %s: %w", c.CaseID, err)
		}
		stats.Cases++
	}

	for _, e := range ds.Citations {
		if e.Citing == "" || e.Cited == "" || e.Citing == e.Cited {
			stats.Skipped++
			continue
		}
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO citations (citing_id, cited_id) VALUES (?, ?)`, e.Citing, e.Cited)
		if err != nil {
			return stats, fmt.Errorf("import citation %s -> %s: %w", e.Citing, e.Cited, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Citations++
		} else {
			stats.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}
