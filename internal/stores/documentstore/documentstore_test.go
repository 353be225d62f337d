package documentstore

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

var documentCols = []string{"id", "doc_type", "title", "citation", "full_text", "jurisdiction_level",
	"jurisdiction_state", "jurisdiction_county", "jurisdiction_court", "publication_date", "effective_date",
	"status", "summary", "plain_language", "reading_level", "tags"}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestFetch(t *testing.T) {
	s, mock := newMock(t)
	effective := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM legal_documents WHERE id = \$1`).
		WithArgs("ca-civ-1714").
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(
			"ca-civ-1714", "statute", "Negligence", "Cal. Civ. Code § 1714", "Everyone is responsible...",
			"state", "CA", nil, nil, nil, effective, "active", nil, nil, 11.5, "{tort,negligence}"))

	doc, err := s.Fetch(context.Background(), "ca-civ-1714")
	require.NoError(t, err)

	assert.Equal(t, models.DocTypeStatute, doc.Type)
	assert.Equal(t, "CA", doc.Jurisdiction.State)
	assert.Equal(t, models.LevelState, doc.Jurisdiction.Level)
	require.NotNil(t, doc.EffectiveDate)
	assert.True(t, effective.Equal(*doc.EffectiveDate))
	assert.Nil(t, doc.PublicationDate)
	require.NotNil(t, doc.ReadingLevel)
	assert.Equal(t, 11.5, *doc.ReadingLevel)
	assert.Equal(t, []string{"tort", "negligence"}, doc.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`FROM legal_documents`).WillReturnRows(sqlmock.NewRows(documentCols))

	_, err := s.Fetch(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrDocumentNotFound))
}

func TestFetch_StoreError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`FROM legal_documents`).WillReturnError(errors.New("conn closed"))

	_, err := s.Fetch(context.Background(), "x")
	std, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDocumentStoreFailed, std.Code)
}

func TestFetchMany(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`FROM legal_documents WHERE id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("d1", "case", "Smith v. Jones", "123 F.3d 1", nil, "federal", nil, nil, "9th Cir.", nil, nil, "active", "Summary", nil, nil, "{}").
			AddRow("d2", "definition", "Tort", nil, "A civil wrong", "state", "NY", nil, nil, nil, nil, "active", nil, "Plain", nil, "{}"))

	docs, err := s.FetchMany(context.Background(), []string{"d1", "d2", "d3"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "9th Cir.", docs["d1"].Jurisdiction.Court)
	assert.Equal(t, "Plain", docs["d2"].PlainLanguage)
}

func TestFetchMany_Empty(t *testing.T) {
	s, _ := newMock(t)
	docs, err := s.FetchMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchDefinitions(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`FROM legal_definitions WHERE lower\(term\) = lower\(\$1\) AND`).
		WithArgs("Tort", "CA").
		WillReturnRows(sqlmock.NewRows([]string{"term", "definition", "plain_language", "jurisdiction", "source", "citation", "related_terms", "examples"}).
			AddRow("tort", "A civil wrong causing harm.", nil, "CA", "Black's Law Dictionary", nil, "{negligence}", "{}"))

	defs, err := s.SearchDefinitions(context.Background(), " Tort ", "CA")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "tort", defs[0].Term)
	assert.Equal(t, []string{"negligence"}, defs[0].RelatedTerms)
	assert.Empty(t, defs[0].PlainLanguage)
}

func TestFetchProcedure(t *testing.T) {
	cols := []string{"procedure_type", "jurisdiction", "steps", "time_estimates", "required_forms", "cost_estimate", "governing_statutes"}

	t.Run("found", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(`FROM legal_procedures`).
			WithArgs("small claims", "CA").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("small claims", "CA",
				[]byte(`[{"number":1,"title":"File claim","description":"File SC-100"}]`),
				[]byte(`{"total":"30-70 days"}`), "{SC-100}", "$30-$75", "{Cal. Civ. Proc. Code § 116.110}"))

		p, err := s.FetchProcedure(context.Background(), "small claims", "CA")
		require.NoError(t, err)
		require.NotNil(t, p)
		require.Len(t, p.Steps, 1)
		assert.Equal(t, "File claim", p.Steps[0].Title)
		assert.Equal(t, "30-70 days", p.TimeEstimates["total"])
		assert.Equal(t, []string{"SC-100"}, p.RequiredForms)
		assert.Equal(t, "catalog", p.Source)
	})

	t.Run("missing", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(`FROM legal_procedures`).WillReturnRows(sqlmock.NewRows(cols))

		p, err := s.FetchProcedure(context.Background(), "eviction", "TX")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}
