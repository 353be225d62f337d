// Package retrieval runs vector and keyword search concurrently with identical filters.
package retrieval

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/metrics"
	"legal-rag-workers/internal/models"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, filters models.SearchFilters, topK int) ([]models.SearchHit, error)
}

type KeywordSearcher interface {
	Search(ctx context.Context, text string, filters models.SearchFilters, topK int) ([]models.SearchHit, error)
}

type DualRetriever struct {
	embedder    Embedder
	vector      VectorSearcher
	keyword     KeywordSearcher
	callTimeout time.Duration
	logger      logger.Logger
}

// Result holds both source-local rankings. A source listed in Unavailable has no hits.
type Result struct {
	VectorHits  []models.SearchHit
	KeywordHits []models.SearchHit
	Unavailable []models.SearchSource
}

func (r Result) Degraded() bool {
	return len(r.Unavailable) > 0
}

func NewDualRetriever(embedder Embedder, vector VectorSearcher, keyword KeywordSearcher,
	callTimeout time.Duration, log logger.Logger) *DualRetriever {
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	return &DualRetriever{
		embedder:    embedder,
		vector:      vector,
		keyword:     keyword,
		callTimeout: callTimeout,
		logger:      log,
	}
}

// Retrieve embeds the question and searches both sources at once. The embedding
// is part of the vector branch, so a failed embedding degrades to keyword only.
// It fails with RETRIEVAL_UNAVAILABLE only when both sources fail.
func (d *DualRetriever) Retrieve(ctx context.Context, question string, filters models.SearchFilters, topK int) (*Result, error) {
	var (
		wg                 sync.WaitGroup
		vectorHits, kwHits []models.SearchHit
		vectorErr, kwErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		vectorHits, vectorErr = d.searchVector(ctx, question, filters, topK)
		metrics.PipelineStageDuration.WithLabelValues("vector_search").Observe(time.Since(start).Seconds())
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
		kwHits, kwErr = d.keyword.Search(callCtx, question, filters, topK)
		metrics.PipelineStageDuration.WithLabelValues("keyword_search").Observe(time.Since(start).Seconds())
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{VectorHits: []models.SearchHit{}, KeywordHits: []models.SearchHit{}}
	if vectorErr != nil {
		d.sourceFailed(models.SourceVector, vectorErr)
		res.Unavailable = append(res.Unavailable, models.SourceVector)
	} else {
		res.VectorHits = vectorHits
	}
	if kwErr != nil {
		d.sourceFailed(models.SourceKeyword, kwErr)
		res.Unavailable = append(res.Unavailable, models.SourceKeyword)
	} else {
		res.KeywordHits = kwHits
	}

	if vectorErr != nil && kwErr != nil {
		return nil, errors.NewRetrievalUnavailableError(vectorErr, kwErr)
	}
	return res, nil
}

func (d *DualRetriever) searchVector(ctx context.Context, question string, filters models.SearchFilters, topK int) ([]models.SearchHit, error) {
	embedCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	vec, err := d.embedder.Embed(embedCtx, question)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	return d.vector.Search(searchCtx, vec, filters, topK)
}

func (d *DualRetriever) sourceFailed(source models.SearchSource, err error) {
	metrics.RetrievalSourceFailures.WithLabelValues(string(source)).Inc()
	d.logger.Warn("retrieval source unavailable", map[string]interface{}{
		"source":  string(source),
		"timeout": stderrors.Is(err, context.DeadlineExceeded),
		"error":   err.Error(),
	})
}
