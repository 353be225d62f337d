// Package rag is the legal question answering pipeline and its entry points.
package rag

import (
	"context"
	"time"

	"legal-rag-workers/internal/analytics"
	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/metrics"
	"legal-rag-workers/internal/common/validation"
	"legal-rag-workers/internal/models"
	"legal-rag-workers/internal/rag/comparison"
	"legal-rag-workers/internal/rag/confidence"
	"legal-rag-workers/internal/rag/enrichment"
	"legal-rag-workers/internal/rag/evidence"
	"legal-rag-workers/internal/rag/fusion"
	"legal-rag-workers/internal/rag/rerank"
	"legal-rag-workers/internal/rag/retrieval"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Classifier interface {
	Classify(ctx context.Context, question, jurisdiction string) models.Intent
}

type Retriever interface {
	Retrieve(ctx context.Context, question string, filters models.SearchFilters, topK int) (*retrieval.Result, error)
}

type Reranker interface {
	Rerank(ctx context.Context, question string, candidates []models.FusedCandidate,
		docs map[string]*models.LegalDocument, maxResults int) rerank.Result
}

type DocumentStore interface {
	FetchMany(ctx context.Context, ids []string) (map[string]*models.LegalDocument, error)
	SearchDefinitions(ctx context.Context, term, jurisdiction string) ([]models.Definition, error)
	FetchProcedure(ctx context.Context, procedureType, jurisdiction string) (*models.Procedure, error)
}

type Enricher interface {
	Enrich(ctx context.Context, in enrichment.Input) enrichment.Output
}

type CitationAnalyzer interface {
	Analyze(ctx context.Context, caseID string, depth int) (*models.CitationGraph, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string, v interface{}) error
}

type Cache interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// Deps are the collaborators of an Agent. Generator, the caches, Publisher and
// Tracer are optional.
type Deps struct {
	Classifier      Classifier
	Retriever       Retriever
	Reranker        Reranker
	Documents       DocumentStore
	Enricher        Enricher
	Citations       CitationAnalyzer
	Generator       Generator
	DefinitionCache Cache
	ComparisonCache Cache
	Publisher       analytics.Publisher
	Tracer          trace.Tracer
}

type Config struct {
	RRFK                 int
	RerankBudget         int
	OversampleFactor     int
	DefaultMaxResults    int
	ComparisonMaxResults int
	DefinitionTTL        time.Duration
	ComparisonTTL        time.Duration
}

type Agent struct {
	deps       Deps
	config     Config
	fusion     *fusion.Engine
	comparator *comparison.Orchestrator
	evidence   *evidence.Advisor
	now        func() time.Time
	logger     logger.Logger
}

func NewAgent(deps Deps, cfg Config, log logger.Logger) *Agent {
	if cfg.RerankBudget <= 0 {
		cfg.RerankBudget = rerank.DefaultBudget
	}
	if cfg.OversampleFactor <= 0 {
		cfg.OversampleFactor = 2
	}
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = 5
	}
	if cfg.DefinitionTTL <= 0 {
		cfg.DefinitionTTL = 24 * time.Hour
	}
	if deps.Publisher == nil {
		deps.Publisher = analytics.NopPublisher{}
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("legal-rag")
	}

	a := &Agent{
		deps:   deps,
		config: cfg,
		fusion: fusion.New(cfg.RRFK),
		now:    time.Now,
		logger: log,
	}

	// Comparisons and evidence lookups run the pipeline without reporting each inner query.
	runner := pipelineRunner{a}
	var summarizer comparison.JSONGenerator
	if deps.Generator != nil {
		summarizer = deps.Generator
	}
	var comparisonCache comparison.Cache
	if deps.ComparisonCache != nil {
		comparisonCache = deps.ComparisonCache
	}
	a.comparator = comparison.NewOrchestrator(runner, summarizer, comparisonCache, comparison.Config{
		MaxResults: cfg.ComparisonMaxResults,
		CacheTTL:   cfg.ComparisonTTL,
	}, log)
	a.evidence = evidence.NewAdvisor(runner, log)
	return a
}

type pipelineRunner struct {
	agent *Agent
}

func (p pipelineRunner) Query(ctx context.Context, req models.QueryRequest) (*models.Response, error) {
	return p.agent.runQuery(ctx, req)
}

// Query answers a legal question. It fails only on invalid input or when both
// retrieval sources are unavailable; other collaborator failures degrade the response.
func (a *Agent) Query(ctx context.Context, req models.QueryRequest) (*models.Response, error) {
	start := a.now()
	resp, err := a.runQuery(ctx, req)

	event := analytics.Event{
		Operation:    "query",
		Subject:      req.Question,
		Jurisdiction: req.Jurisdiction,
	}
	if resp != nil {
		event.Intent = string(resp.Intent.Type)
		event.ResultCount = len(resp.Results)
		event.Confidence = resp.Confidence
		event.Degraded = resp.Provenance.Degraded
	}
	a.report(ctx, event, start, err)
	return resp, err
}

func (a *Agent) runQuery(ctx context.Context, req models.QueryRequest) (*models.Response, error) {
	req, err := a.validateQuery(req)
	if err != nil {
		return nil, err
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.query", trace.WithAttributes(
		attribute.String("jurisdiction", req.Jurisdiction),
		attribute.Int("max_results", req.MaxResults),
	))
	defer span.End()

	intent := timed("intent", func() models.Intent {
		return a.deps.Classifier.Classify(ctx, req.Question, req.Jurisdiction)
	})
	span.SetAttributes(attribute.String("intent", string(intent.Type)))

	filters := models.SearchFilters{
		Jurisdiction:  req.Jurisdiction,
		DocumentTypes: req.DocumentTypes,
		DateRange:     req.DateRange,
	}
	retrieved, err := a.deps.Retriever.Retrieve(ctx, req.Question, filters, req.MaxResults*a.config.OversampleFactor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	fused := timed("fusion", func() []models.FusedCandidate {
		return a.fusion.Fuse(retrieved.VectorHits, retrieved.KeywordHits)
	})

	docs, err := a.fetchCandidates(ctx, fused)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "document fetch failed")
		return nil, err
	}

	ranked := timed("rerank", func() rerank.Result {
		return a.deps.Reranker.Rerank(ctx, req.Question, fused, docs, req.MaxResults)
	})
	if ranked.Fallback {
		metrics.RerankFallbacks.Inc()
	}

	enriched := timed("enrichment", func() enrichment.Output {
		return a.deps.Enricher.Enrich(ctx, enrichment.Input{
			Intent:               intent,
			Jurisdiction:         req.Jurisdiction,
			Results:              ranked.Results,
			IncludePlainLanguage: req.IncludePlainLanguage,
		})
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := confidence.Score(enriched.Results, intent)
	metrics.QueryConfidence.Observe(score)
	span.SetAttributes(attribute.Float64("confidence", score), attribute.Int("results", len(enriched.Results)))

	return &models.Response{
		ID:              uuid.New().String(),
		Query:           req.Question,
		Intent:          intent,
		Results:         enriched.Results,
		Definitions:     enriched.Definitions,
		CrossReferences: enriched.CrossReferences,
		NextSteps:       enriched.NextSteps,
		Confidence:      score,
		SourceCount:     len(enriched.Results),
		Provenance: models.Provenance{
			Degraded:           retrieved.Degraded(),
			UnavailableSources: retrieved.Unavailable,
			RerankFallback:     ranked.Fallback,
		},
		Timestamp: a.now().UTC(),
	}, nil
}

func (a *Agent) validateQuery(req models.QueryRequest) (models.QueryRequest, error) {
	var err error
	if req.Question, err = validation.RequireText("question", req.Question); err != nil {
		return req, err
	}
	if req.Jurisdiction, err = validation.NormalizeOptionalJurisdiction(req.Jurisdiction); err != nil {
		return req, err
	}
	if req.MaxResults, err = validation.NormalizeMaxResults(req.MaxResults, a.config.DefaultMaxResults); err != nil {
		return req, err
	}
	for _, t := range req.DocumentTypes {
		if !t.Valid() {
			return req, errors.NewInvalidInputError("documentTypes", "unknown document type "+string(t))
		}
	}
	if err := validation.ValidateDateRange(req.DateRange); err != nil {
		return req, err
	}
	return req, nil
}

// fetchCandidates loads the documents the reranker may score.
func (a *Agent) fetchCandidates(ctx context.Context, fused []models.FusedCandidate) (map[string]*models.LegalDocument, error) {
	n := min(len(fused), a.config.RerankBudget)
	if n == 0 {
		return map[string]*models.LegalDocument{}, nil
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fused[i].DocumentID
	}
	return a.deps.Documents.FetchMany(ctx, ids)
}

func (a *Agent) report(ctx context.Context, event analytics.Event, start time.Time, err error) {
	event.ID = uuid.New().String()
	event.DurationMs = a.now().Sub(start).Milliseconds()
	event.Timestamp = a.now().UTC()
	event.Status = "success"
	if err != nil {
		event.Status = "error"
		event.ErrorCode = string(errors.Normalize(err).Code)
		a.logger.Debug("legal operation failed", map[string]interface{}{
			"operation": event.Operation,
			"error":     err.Error(),
		})
	}
	a.deps.Publisher.Publish(ctx, event)
}

func timed[T any](stage string, fn func() T) T {
	start := time.Now()
	out := fn()
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return out
}
