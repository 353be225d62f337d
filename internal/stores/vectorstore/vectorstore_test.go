package vectorstore

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "similarity"}).
		AddRow("doc-1", 0.91).
		AddRow("doc-2", 0.80)
	mock.ExpectQuery(`SELECT id, 1 - \(embedding <=> \$1\) AS similarity FROM legal_documents WHERE embedding IS NOT NULL AND jurisdiction_state = \$2 AND doc_type = ANY\(\$3\) ORDER BY embedding <=> \$1 LIMIT \$4`).
		WithArgs(sqlmock.AnyArg(), "CA", sqlmock.AnyArg(), 10).
		WillReturnRows(rows)

	s := New(db)
	hits, err := s.Search(context.Background(), []float32{0.1, 0.2}, models.SearchFilters{
		Jurisdiction:  "CA",
		DocumentTypes: []models.DocumentType{models.DocTypeStatute},
	}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, models.SearchHit{DocumentID: "doc-1", Source: models.SourceVector, Rank: 1, Score: 0.91}, hits[0])
	assert.Equal(t, 2, hits[1].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM legal_documents`).WillReturnError(errors.New("connection reset"))

	_, err = New(db).Search(context.Background(), []float32{1}, models.SearchFilters{}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search")
	assert.True(t, errors.Is(err, &apperrors.StandardError{Code: apperrors.ErrCodeSearchQueryFailed}))
}

func TestSearch_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM legal_documents`).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"id", "similarity"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = New(db).Search(ctx, []float32{1}, models.SearchFilters{}, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &apperrors.StandardError{Code: apperrors.ErrCodeSearchTimeout}))
}

func TestSearch_EmptyVector(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db).Search(context.Background(), nil, models.SearchFilters{}, 5)
	assert.True(t, errors.Is(err, &apperrors.StandardError{Code: apperrors.ErrCodeSearchQueryFailed}))
}

func TestFilterClause(t *testing.T) {
	from := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filters  models.SearchFilters
		want     string
		wantArgs int
	}{
		{"none", models.SearchFilters{}, "", 1},
		{"federal", models.SearchFilters{Jurisdiction: "US"}, " AND jurisdiction_level = $2", 2},
		{"state and dates", models.SearchFilters{
			Jurisdiction: "TX",
			DateRange:    &models.DateRange{From: &from, To: &to},
		}, " AND jurisdiction_state = $2 AND effective_date >= $3 AND effective_date <= $4", 4},
		{"open range", models.SearchFilters{DateRange: &models.DateRange{To: &to}}, " AND effective_date <= $2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := FilterClause(tt.filters, []interface{}{"vec"})
			assert.Equal(t, tt.want, got)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}
