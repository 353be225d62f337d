// Package citation analyses the citation network around a case.
package citation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"
)

const (
	DefaultMaxDepth      = 5
	DefaultHalfLifeYears = 10.0
	DefaultSaturation    = 5.0
	maxCourtLevel        = 4
)

type GraphStore interface {
	CaseExists(ctx context.Context, caseID string) (bool, error)
	Neighbors(ctx context.Context, caseID string, direction models.CitationDirection, maxHops int) ([]models.CitationNode, error)
	CaseInfo(ctx context.Context, ids []string) (map[string]models.CaseInfo, error)
}

type Config struct {
	MaxDepth      int
	HalfLifeYears float64
	Saturation    float64
}

type Analyzer struct {
	store  GraphStore
	config Config
	now    func() time.Time
	logger logger.Logger
}

func NewAnalyzer(store GraphStore, cfg Config, log logger.Logger) *Analyzer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.HalfLifeYears <= 0 {
		cfg.HalfLifeYears = DefaultHalfLifeYears
	}
	if cfg.Saturation <= 0 {
		cfg.Saturation = DefaultSaturation
	}
	return &Analyzer{store: store, config: cfg, now: time.Now, logger: log}
}

type walkResult struct {
	nodes []models.CitationNode
	err   error
}

// Analyze walks both citation directions up to depth hops from caseID.
// Depth above the configured maximum is capped.
func (a *Analyzer) Analyze(ctx context.Context, caseID string, depth int) (*models.CitationGraph, error) {
	if depth < 1 {
		return nil, errors.NewInvalidInputError("depth", fmt.Sprintf("must be at least 1, got %d", depth))
	}
	if depth > a.config.MaxDepth {
		depth = a.config.MaxDepth
	}

	exists, err := a.store.CaseExists(ctx, caseID)
	if err != nil {
		return nil, errors.NewGraphStoreError("case_exists", err)
	}
	if !exists {
		return nil, errors.NewCaseNotFoundError(caseID)
	}

	// Each direction owns its visited set, seeded with the root.
	citesCh := make(chan walkResult, 1)
	citedByCh := make(chan walkResult, 1)
	go func() { citesCh <- a.walk(ctx, caseID, models.DirectionCites, depth) }()
	go func() { citedByCh <- a.walk(ctx, caseID, models.DirectionCitedBy, depth) }()
	cites, citedBy := <-citesCh, <-citedByCh

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cites.err != nil {
		return nil, errors.NewGraphStoreError("neighbors", cites.err)
	}
	if citedBy.err != nil {
		return nil, errors.NewGraphStoreError("neighbors", citedBy.err)
	}

	related, err := a.related(ctx, caseID, cites.nodes, citedBy.nodes)
	if err != nil {
		return nil, errors.NewGraphStoreError("co_citation", err)
	}

	strength, err := a.strength(ctx, citedBy.nodes)
	if err != nil {
		return nil, errors.NewGraphStoreError("case_info", err)
	}

	return &models.CitationGraph{
		CaseID:               caseID,
		Cites:                ids(cites.nodes),
		CitedBy:              ids(citedBy.nodes),
		Related:              related,
		Depth:                depth,
		PrecedentialStrength: strength,
	}, nil
}

// walk is a level-order traversal in one direction. No node is visited twice,
// so cycles terminate.
func (a *Analyzer) walk(ctx context.Context, root string, dir models.CitationDirection, depth int) walkResult {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var out []models.CitationNode

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			if err := ctx.Err(); err != nil {
				return walkResult{err: err}
			}
			neighbors, err := a.store.Neighbors(ctx, id, dir, 1)
			if err != nil {
				return walkResult{err: err}
			}
			for _, n := range neighbors {
				if visited[n.CaseID] {
					continue
				}
				visited[n.CaseID] = true
				out = append(out, models.CitationNode{CaseID: n.CaseID, Hop: hop})
				next = append(next, n.CaseID)
			}
		}
		sort.Strings(next)
		frontier = next
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hop != out[j].Hop {
			return out[i].Hop < out[j].Hop
		}
		return out[i].CaseID < out[j].CaseID
	})
	return walkResult{nodes: out}
}

// related is every case sharing a direct citer or citee with the root, minus the
// root and every case already in cites or cited_by. A case reachable in both
// directions is already in both of those sets, so it is never related.
func (a *Analyzer) related(ctx context.Context, root string, cites, citedBy []models.CitationNode) ([]string, error) {
	classified := map[string]bool{root: true}
	for _, n := range cites {
		classified[n.CaseID] = true
	}
	for _, n := range citedBy {
		classified[n.CaseID] = true
	}

	related := map[string]bool{}
	// Cases citing the same authority as the root.
	for _, n := range cites {
		if n.Hop != 1 {
			continue
		}
		peers, err := a.store.Neighbors(ctx, n.CaseID, models.DirectionCitedBy, 1)
		if err != nil {
			return nil, err
		}
		for _, p := range peers {
			related[p.CaseID] = true
		}
	}
	// Cases cited alongside the root.
	for _, n := range citedBy {
		if n.Hop != 1 {
			continue
		}
		peers, err := a.store.Neighbors(ctx, n.CaseID, models.DirectionCites, 1)
		if err != nil {
			return nil, err
		}
		for _, p := range peers {
			related[p.CaseID] = true
		}
	}

	out := make([]string, 0, len(related))
	for id := range related {
		if !classified[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// strength sums court_weight * recency / hop over citing cases and saturates into [0,1).
func (a *Analyzer) strength(ctx context.Context, citedBy []models.CitationNode) (float64, error) {
	if len(citedBy) == 0 {
		return 0, nil
	}
	info, err := a.store.CaseInfo(ctx, ids(citedBy))
	if err != nil {
		return 0, err
	}

	currentYear := a.now().Year()
	var sum float64
	for _, n := range citedBy {
		sum += Contribution(info[n.CaseID], n.Hop, currentYear, a.config.HalfLifeYears)
	}
	return Saturate(sum, a.config.Saturation), nil
}

// Contribution is one citer's weight: court level share, halved for stale
// citations on the half-life curve, divided by hop distance.
func Contribution(info models.CaseInfo, hop, currentYear int, halfLifeYears float64) float64 {
	if hop < 1 {
		hop = 1
	}
	level := info.CourtLevel
	if level < 1 {
		level = 1
	}
	if level > maxCourtLevel {
		level = maxCourtLevel
	}
	courtWeight := float64(level) / maxCourtLevel

	recency := 0.0
	if info.DecidedYear > 0 {
		age := math.Max(0, float64(currentYear-info.DecidedYear))
		recency = math.Exp(-math.Ln2 / halfLifeYears * age)
	}
	return courtWeight * (0.5 + 0.5*recency) / float64(hop)
}

// Saturate maps a non-negative sum into [0,1).
func Saturate(sum, saturation float64) float64 {
	if sum <= 0 {
		return 0
	}
	return sum / (sum + saturation)
}

func ids(nodes []models.CitationNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.CaseID
	}
	return out
}
