// Package rerank reorders fused candidates with a cross-encoder relevance scorer.
package rerank

import (
	"context"
	"sort"
	"sync"
	"time"

	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"
)

const (
	DefaultBudget      = 20
	DefaultConcurrency = 4
	excerptRunes       = 600
)

// Scorer scores how well passage answers question; higher is better.
type Scorer interface {
	Score(ctx context.Context, question, passage string) (float64, error)
}

type Config struct {
	Budget      int
	Concurrency int
	CallTimeout time.Duration
}

type Reranker struct {
	scorer Scorer
	config Config
	logger logger.Logger
}

// Result is the reranked list. Fallback is set when scoring failed and fused order was kept.
type Result struct {
	Results  []models.RankedResult
	Fallback bool
}

func New(scorer Scorer, cfg Config, log logger.Logger) *Reranker {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	return &Reranker{scorer: scorer, config: cfg, logger: log}
}

// Rerank scores at most Budget of the fused candidates and keeps maxResults of them.
// Candidates without a document in docs are dropped. Truncation happens after scoring.
func (r *Reranker) Rerank(ctx context.Context, question string, candidates []models.FusedCandidate,
	docs map[string]*models.LegalDocument, maxResults int) Result {

	pool := make([]models.RankedResult, 0, min(len(candidates), r.config.Budget))
	passages := make([]string, 0, cap(pool))
	for _, c := range candidates {
		if len(pool) == r.config.Budget {
			break
		}
		doc, ok := docs[c.DocumentID]
		if !ok {
			continue
		}
		pool = append(pool, models.RankedResult{
			FusedCandidate: c,
			Excerpt:        doc.Excerpt(excerptRunes),
			PlainLanguage:  doc.PlainLanguage,
			Metadata:       doc.Metadata(),
		})
		passages = append(passages, passage(doc))
	}
	if len(pool) == 0 {
		return Result{Results: []models.RankedResult{}}
	}

	scores, err := r.scoreAll(ctx, question, passages)
	if err != nil {
		r.logger.Warn("relevance scoring failed, keeping fused order", map[string]interface{}{
			"candidates": len(pool),
			"error":      err.Error(),
		})
		for i := range pool {
			pool[i].RerankScore = pool[i].FusedScore
		}
		return Result{Results: truncate(pool, maxResults), Fallback: true}
	}

	for i := range pool {
		pool[i].RerankScore = scores[i]
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].RerankScore != pool[j].RerankScore {
			return pool[i].RerankScore > pool[j].RerankScore
		}
		return pool[i].FusedScore > pool[j].FusedScore
	})
	return Result{Results: truncate(pool, maxResults)}
}

// scoreAll scores passages with bounded concurrency. The first failure cancels the rest.
func (r *Reranker) scoreAll(ctx context.Context, question string, passages []string) ([]float64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scores := make([]float64, len(passages))
	sem := make(chan struct{}, r.config.Concurrency)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i, p := range passages {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				once.Do(func() { firstErr = ctx.Err() })
				return
			}
			defer func() { <-sem }()

			callCtx, callCancel := context.WithTimeout(ctx, r.config.CallTimeout)
			defer callCancel()
			s, err := r.scorer.Score(callCtx, question, p)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			scores[i] = s
		}(i, p)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return scores, nil
}

func passage(doc *models.LegalDocument) string {
	text := doc.Title
	if doc.Citation != "" {
		text += " (" + doc.Citation + ")"
	}
	return text + "\n" + doc.Excerpt(excerptRunes*2)
}

func truncate(results []models.RankedResult, maxResults int) []models.RankedResult {
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
