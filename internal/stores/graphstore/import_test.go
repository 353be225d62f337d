package graphstore

import (
	"context"
	"testing"

	"legal-rag-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Import(ctx, Dataset{
		Cases: []models.CaseInfo{
			{CaseID: "roe", Court: "scotus", CourtLevel: 4, DecidedYear: 1973},
			{CaseID: "casey", Court: "scotus", CourtLevel: 4, DecidedYear: 1992},
			{CaseID: ""},
		},
		Citations: []Citation{
			{Citing: "casey", Cited: "roe"},
			{Citing: "casey", Cited: "roe"},
			{Citing: "roe", Cited: "roe"},
			{Citing: "", Cited: "roe"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Cases: 2, Citations: 1, Skipped: 4}, stats)

	citedBy, err := s.Neighbors(ctx, "roe", models.DirectionCitedBy, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.CitationNode{{CaseID: "casey", Hop: 1}}, citedBy)

	info, err := s.CaseInfo(ctx, []string{"casey"})
	require.NoError(t, err)
	assert.Equal(t, 1992, info["casey"].DecidedYear)
}

func TestImport_UpdatesCaseMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, Dataset{Cases: []models.CaseInfo{{CaseID: "x", CourtLevel: 1}}})
	require.NoError(t, err)
	_, err = s.Import(ctx, Dataset{Cases: []models.CaseInfo{{CaseID: "x", Court: "ca9", CourtLevel: 3, DecidedYear: 2001}}})
	require.NoError(t, err)

	info, err := s.CaseInfo(ctx, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, models.CaseInfo{CaseID: "x", Court: "ca9", CourtLevel: 3, DecidedYear: 2001}, info["x"])
}
