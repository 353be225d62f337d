// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"legal-rag-workers/internal/analytics"
	"legal-rag-workers/internal/common/aws"
	"legal-rag-workers/internal/common/camunda"
	"legal-rag-workers/internal/common/config"
	"legal-rag-workers/internal/common/database"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/observability"
	"legal-rag-workers/internal/providers/gemini"
	"legal-rag-workers/internal/providers/relevance"
	"legal-rag-workers/internal/rag"
	"legal-rag-workers/internal/rag/citation"
	"legal-rag-workers/internal/rag/enrichment"
	"legal-rag-workers/internal/rag/intent"
	"legal-rag-workers/internal/rag/rerank"
	"legal-rag-workers/internal/rag/retrieval"
	"legal-rag-workers/internal/stores/cache"
	"legal-rag-workers/internal/stores/documentstore"
	"legal-rag-workers/internal/stores/graphstore"
	"legal-rag-workers/internal/stores/keywordstore"
	"legal-rag-workers/internal/stores/vectorstore"
	"legal-rag-workers/pkg/registry"

	// Legal Workers (6)
	acn "legal-rag-workers/internal/workers/legal/analyze-citation-network"
	csl "legal-rag-workers/internal/workers/legal/compare-state-laws"
	ger "legal-rag-workers/internal/workers/legal/get-evidence-requirements"
	gld "legal-rag-workers/internal/workers/legal/get-legal-definition"
	glp "legal-rag-workers/internal/workers/legal/get-legal-procedure"
	lq "legal-rag-workers/internal/workers/legal/legal-query"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type workerSpec struct {
	taskType string
	enabled  bool
	opts     camunda.WorkerOptions
	handler  camunda.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting legal worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init citation graph ---
	graphDB, err := database.NewSQLite(cfg.Database.Graph)
	if err != nil {
		zapLog.Fatal("citation graph open failed", zap.Error(err))
	}
	defer graphDB.Close()
	graph, err := graphstore.New(ctx, graphDB.DB)
	if err != nil {
		zapLog.Fatal("citation graph schema failed", zap.Error(err))
	}
	zapLog.Info("Citation graph ready", zap.String("path", cfg.Database.Graph.Path))

	// --- Init model services ---
	gem, err := gemini.New(ctx, gemini.Config{
		APIKey:          cfg.APIs.GenAI.APIKey,
		GenerationModel: cfg.APIs.GenAI.GenerationModel,
		EmbeddingModel:  cfg.APIs.GenAI.EmbeddingModel,
		Timeout:         config.GetDuration(cfg.APIs.GenAI.Timeout),
	}, log)
	if err != nil {
		zapLog.Fatal("gemini client failed", zap.Error(err))
	}
	scorer := relevance.NewScorer(relevance.Config{
		BaseURL:    cfg.APIs.Relevance.BaseURL,
		APIKey:     cfg.APIs.Relevance.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.Relevance.Timeout),
		MaxRetries: cfg.APIs.Relevance.MaxRetries,
	})

	var publisher analytics.Publisher = analytics.NopPublisher{}
	if cfg.Analytics.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Analytics.Region)
		if err != nil {
			zapLog.Warn("analytics disabled, sns client failed", zap.Error(err))
		} else {
			publisher = analytics.NewSNSPublisher(snsClient, cfg.Analytics.TopicARN, log)
		}
	}

	// --- Build the legal pipeline ---
	callTimeout := config.GetDuration(cfg.RAG.CallTimeout)
	documents := documentstore.New(pg.GetDB())
	citations := citation.NewAnalyzer(graph, citation.Config{
		MaxDepth:      cfg.RAG.MaxCitationDepth,
		HalfLifeYears: cfg.RAG.Strength.HalfLifeYears,
		Saturation:    cfg.RAG.Strength.Saturation,
	}, log)

	agent := rag.NewAgent(rag.Deps{
		Classifier: intent.NewClassifier(gem, log),
		Retriever: retrieval.NewDualRetriever(gem,
			vectorstore.New(pg.GetDB()),
			keywordstore.New(esClient.Client, cfg.Database.Elasticsearch.Index),
			callTimeout, log),
		Reranker: rerank.New(scorer, rerank.Config{
			Budget:      cfg.RAG.RerankBudget,
			Concurrency: cfg.RAG.RerankConcurrency,
			CallTimeout: callTimeout,
		}, log),
		Documents:       documents,
		Enricher:        enrichment.NewEnricher(documents, citations, gem, callTimeout, log),
		Citations:       citations,
		Generator:       gem,
		DefinitionCache: cache.New(redis.GetClient(), "definition"),
		ComparisonCache: cache.New(redis.GetClient(), "comparison"),
		Publisher:       publisher,
		Tracer:          tracing.Tracer(),
	}, rag.Config{
		RRFK:                 cfg.RAG.RRFK,
		RerankBudget:         cfg.RAG.RerankBudget,
		OversampleFactor:     cfg.RAG.OversampleFactor,
		DefaultMaxResults:    cfg.RAG.DefaultMaxResults,
		ComparisonMaxResults: cfg.RAG.ComparisonMaxResults,
		DefinitionTTL:        config.GetSeconds(cfg.Cache.DefinitionTTLSeconds),
		ComparisonTTL:        config.GetSeconds(cfg.Cache.ComparisonTTLSeconds),
	}, log)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry unavailable, job input schemas disabled",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
		reg = &registry.ActivityRegistry{}
	}

	// --- Register Legal Workers ---
	queryCfg := lq.LoadConfig(cfg)
	definitionCfg := gld.LoadConfig(cfg)
	procedureCfg := glp.LoadConfig(cfg)
	compareCfg := csl.LoadConfig(cfg)
	evidenceCfg := ger.LoadConfig(cfg)
	citationCfg := acn.LoadConfig(cfg)

	specs := []workerSpec{
		{lq.TaskType, queryCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: queryCfg.MaxJobsActive, Timeout: queryCfg.Timeout},
			lq.NewHandler(queryCfg, agent, reg.InputSchema(lq.TaskType), log)},
		{gld.TaskType, definitionCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: definitionCfg.MaxJobsActive, Timeout: definitionCfg.Timeout},
			gld.NewHandler(definitionCfg, agent, reg.InputSchema(gld.TaskType), log)},
		{glp.TaskType, procedureCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: procedureCfg.MaxJobsActive, Timeout: procedureCfg.Timeout},
			glp.NewHandler(procedureCfg, agent, reg.InputSchema(glp.TaskType), log)},
		{csl.TaskType, compareCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: compareCfg.MaxJobsActive, Timeout: compareCfg.Timeout},
			csl.NewHandler(compareCfg, agent, reg.InputSchema(csl.TaskType), log)},
		{ger.TaskType, evidenceCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: evidenceCfg.MaxJobsActive, Timeout: evidenceCfg.Timeout},
			ger.NewHandler(evidenceCfg, agent, reg.InputSchema(ger.TaskType), log)},
		{acn.TaskType, citationCfg.Enabled, camunda.WorkerOptions{MaxJobsActive: citationCfg.MaxJobsActive, Timeout: citationCfg.Timeout},
			acn.NewHandler(citationCfg, agent, reg.InputSchema(acn.TaskType), log)},
	}

	var workers []*camunda.CamundaWorker
	for _, s := range specs {
		if !s.enabled {
			zapLog.Info("worker disabled", zap.String("taskType", s.taskType))
			continue
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), s.taskType, s.opts, s.handler, obs, zapLog))
	}
	zapLog.Info("Legal workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		status, code := "ready", http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"postgres":      pg.Ping,
			"elasticsearch": esClient.Ping,
			"redis":         redis.Ping,
			"graph":         graphDB.Ping,
		} {
			if err := ping(checkCtx); err != nil {
				checks[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.App.HTTPAddress, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.App.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
