package citation

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	apperrors "legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"
	"legal-rag-workers/internal/stores/graphstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newGraph(t *testing.T, edges [][2]string, cases ...models.CaseInfo) *graphstore.Store {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	g, err := graphstore.New(ctx, db)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, g.AddCitation(ctx, e[0], e[1]))
	}
	for _, c := range cases {
		require.NoError(t, g.UpsertCase(ctx, c))
	}
	return g
}

func newAnalyzer(t *testing.T, g GraphStore) *Analyzer {
	a := NewAnalyzer(g, Config{MaxDepth: 5, HalfLifeYears: 10, Saturation: 5}, logger.NewTestLogger(t))
	a.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyze_Directions(t *testing.T) {
	// root cites A, A cites B; C and D cite root; C also cites E; F cites A.
	g := newGraph(t, [][2]string{
		{"root", "A"}, {"A", "B"},
		{"C", "root"}, {"D", "root"}, {"C", "E"},
		{"F", "A"},
	})

	got, err := newAnalyzer(t, g).Analyze(context.Background(), "root", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, got.Cites)
	assert.Equal(t, []string{"C", "D"}, got.CitedBy)
	// E is cited alongside root by C; F cites the same authority A.
	assert.Equal(t, []string{"E", "F"}, got.Related)
	assert.Equal(t, 2, got.Depth)
	assert.Greater(t, got.PrecedentialStrength, 0.0)
	assert.Less(t, got.PrecedentialStrength, 1.0)
}

func TestAnalyze_CycleSafe(t *testing.T) {
	g := newGraph(t, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}, {"B", "A"}})

	got, err := newAnalyzer(t, g).Analyze(context.Background(), "A", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, got.Cites)
	assert.Equal(t, []string{"B", "C"}, got.CitedBy)
	assert.NotContains(t, got.Related, "A")
	assertUnique(t, got.Cites)
	assertUnique(t, got.CitedBy)
	assertUnique(t, got.Related)
}

func TestAnalyze_RelatedExcludesDeeperCites(t *testing.T) {
	// B is reached at hop 2 through A and also co-cites A with root.
	g := newGraph(t, [][2]string{{"root", "A"}, {"A", "B"}, {"B", "A"}})

	got, err := newAnalyzer(t, g).Analyze(context.Background(), "root", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, got.Cites)
	assert.Empty(t, got.CitedBy)
	assert.Empty(t, got.Related)
}

func TestAnalyze_CitedByWithoutCites(t *testing.T) {
	g := newGraph(t, [][2]string{{"X", "leaf"}, {"Y", "leaf"}})

	got, err := newAnalyzer(t, g).Analyze(context.Background(), "leaf", 1)
	require.NoError(t, err)
	assert.Empty(t, got.Cites)
	assert.Equal(t, []string{"X", "Y"}, got.CitedBy)
}

func TestAnalyze_DepthBounds(t *testing.T) {
	g := newGraph(t, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}, {"E", "F"}, {"F", "G"}})
	a := newAnalyzer(t, g)

	got, err := a.Analyze(context.Background(), "A", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got.Cites)

	got, err = a.Analyze(context.Background(), "A", 50)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Depth)
	assert.Equal(t, []string{"B", "C", "D", "E", "F"}, got.Cites)

	_, err = a.Analyze(context.Background(), "A", 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestAnalyze_CaseNotFound(t *testing.T) {
	g := newGraph(t, [][2]string{{"A", "B"}})

	_, err := newAnalyzer(t, g).Analyze(context.Background(), "missing", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrCaseNotFound))
}

func TestStrength_Monotonic(t *testing.T) {
	ctx := context.Background()
	year := 2020

	one := newGraph(t, [][2]string{{"c1", "root"}},
		models.CaseInfo{CaseID: "c1", CourtLevel: 2, DecidedYear: year})
	two := newGraph(t, [][2]string{{"c1", "root"}, {"c2", "root"}},
		models.CaseInfo{CaseID: "c1", CourtLevel: 2, DecidedYear: year},
		models.CaseInfo{CaseID: "c2", CourtLevel: 2, DecidedYear: year})
	higherCourt := newGraph(t, [][2]string{{"c1", "root"}},
		models.CaseInfo{CaseID: "c1", CourtLevel: 4, DecidedYear: year})

	s1, err := newAnalyzer(t, one).Analyze(ctx, "root", 1)
	require.NoError(t, err)
	s2, err := newAnalyzer(t, two).Analyze(ctx, "root", 1)
	require.NoError(t, err)
	s3, err := newAnalyzer(t, higherCourt).Analyze(ctx, "root", 1)
	require.NoError(t, err)

	assert.Greater(t, s2.PrecedentialStrength, s1.PrecedentialStrength)
	assert.Greater(t, s3.PrecedentialStrength, s1.PrecedentialStrength)
}

func TestContribution(t *testing.T) {
	supreme := models.CaseInfo{CourtLevel: 4, DecidedYear: 2024}
	assert.InDelta(t, 1.0, Contribution(supreme, 1, 2024, 10), 1e-12)

	// One half-life later the recency term halves.
	aged := models.CaseInfo{CourtLevel: 4, DecidedYear: 2014}
	assert.InDelta(t, 0.75, Contribution(aged, 1, 2024, 10), 1e-12)

	assert.InDelta(t, 0.5, Contribution(supreme, 2, 2024, 10), 1e-12)
	assert.InDelta(t, 0.125, Contribution(models.CaseInfo{}, 1, 2024, 10), 1e-12)
}

func TestSaturate_Bounded(t *testing.T) {
	assert.Equal(t, 0.0, Saturate(0, 5))
	assert.InDelta(t, 0.5, Saturate(5, 5), 1e-12)
	assert.Less(t, Saturate(1e12, 5), 1.0)
}

func assertUnique(t *testing.T, ids []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}
