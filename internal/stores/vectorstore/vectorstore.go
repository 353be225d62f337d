// Package vectorstore runs nearest-neighbour search over document embeddings in pgvector.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/models"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const (
	documentsTable = "legal_documents"
	source         = string(models.SourceVector)
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Search returns up to topK documents ordered by cosine distance to vector.
// Ranks are 1-based and the score is cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float32, filters models.SearchFilters, topK int) ([]models.SearchHit, error) {
	if len(vector) == 0 {
		return nil, errors.NewSearchQueryFailedError(source, fmt.Errorf("empty query vector"))
	}
	if topK <= 0 {
		return nil, nil
	}

	args := []interface{}{pgvector.NewVector(vector)}
	where, args := FilterClause(filters, args)

	query := `SELECT id, 1 - (embedding <=> $1) AS similarity FROM ` + documentsTable +
		` WHERE embedding IS NOT NULL` + where +
		` ORDER BY embedding <=> $1 LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewSearchError(ctx, source, fmt.Errorf("vector search: %w", err))
	}
	defer rows.Close()

	hits := make([]models.SearchHit, 0, topK)
	for rows.Next() {
		var id string
		var similarity float64
		if err := rows.Scan(&id, &similarity); err != nil {
			return nil, errors.NewSearchQueryFailedError(source, fmt.Errorf("vector search scan: %w", err))
		}
		hits = append(hits, models.SearchHit{
			DocumentID: id,
			Source:     models.SourceVector,
			Rank:       len(hits) + 1,
			Score:      similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSearchError(ctx, source, fmt.Errorf("vector search rows: %w", err))
	}
	return hits, nil
}

// FilterClause renders filters as " AND ..." conditions on the documents table,
// numbering placeholders after the existing args.
func FilterClause(filters models.SearchFilters, args []interface{}) (string, []interface{}) {
	var conds []string
	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	switch filters.Jurisdiction {
	case "":
	case "US":
		conds = append(conds, "jurisdiction_level = "+next(string(models.LevelFederal)))
	default:
		conds = append(conds, "jurisdiction_state = "+next(filters.Jurisdiction))
	}

	if len(filters.DocumentTypes) > 0 {
		types := make([]string, len(filters.DocumentTypes))
		for i, t := range filters.DocumentTypes {
			types[i] = string(t)
		}
		conds = append(conds, "doc_type = ANY("+next(pq.Array(types))+")")
	}

	if r := filters.DateRange; r != nil {
		if r.From != nil {
			conds = append(conds, "effective_date >= "+next(*r.From))
		}
		if r.To != nil {
			conds = append(conds, "effective_date <= "+next(*r.To))
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conds, " AND "), args
}
