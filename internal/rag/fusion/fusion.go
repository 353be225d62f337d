// Package fusion merges source-local rankings with Reciprocal Rank Fusion.
package fusion

import (
	"sort"

	"legal-rag-workers/internal/models"
)

// DefaultK is the RRF smoothing constant.
const DefaultK = 60

type Engine struct {
	k int
}

func New(k int) *Engine {
	if k <= 0 {
		k = DefaultK
	}
	return &Engine{k: k}
}

// Fuse scores each document by the sum of 1/(k+rank) over the lists it appears in.
// Candidates are ordered by fused score, then smaller best rank, then id.
// A document repeated within one list keeps its best rank there.
func (e *Engine) Fuse(lists ...[]models.SearchHit) []models.FusedCandidate {
	byID := make(map[string]*models.FusedCandidate)
	var order []string

	for _, hits := range lists {
		for _, h := range hits {
			if h.DocumentID == "" || h.Rank < 1 {
				continue
			}
			c, ok := byID[h.DocumentID]
			if !ok {
				c = &models.FusedCandidate{
					DocumentID: h.DocumentID,
					Ranks:      make(map[models.SearchSource]int, 2),
				}
				byID[h.DocumentID] = c
				order = append(order, h.DocumentID)
			}
			if prev, seen := c.Ranks[h.Source]; !seen || h.Rank < prev {
				c.Ranks[h.Source] = h.Rank
			}
		}
	}

	out := make([]models.FusedCandidate, 0, len(order))
	for _, id := range order {
		c := byID[id]
		// Sum in a fixed source order so equal inputs give bit-identical scores.
		for _, src := range sourcesOf(c.Ranks) {
			c.FusedScore += 1.0 / float64(e.k+c.Ranks[src])
			c.Sources = append(c.Sources, src)
		}
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		if mi, mj := out[i].MinRank(), out[j].MinRank(); mi != mj {
			return mi < mj
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	return out
}

func sourcesOf(ranks map[models.SearchSource]int) []models.SearchSource {
	srcs := make([]models.SearchSource, 0, len(ranks))
	for s := range ranks {
		srcs = append(srcs, s)
	}
	sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })
	return srcs
}
