// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Pipeline metrics
var (
	RetrievalSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_retrieval_source_failures_total",
			Help: "Retrieval source calls that failed or timed out",
		},
		[]string{"source"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legal_pipeline_stage_duration_seconds",
			Help:    "Duration of each query pipeline stage",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	QueryConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legal_query_confidence",
			Help:    "Confidence of answered queries",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	RerankFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_rerank_fallbacks_total",
			Help: "Queries that kept fused order because relevance scoring failed",
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_cache_requests_total",
			Help: "Cache lookups by cache and result (hit, miss, error)",
		},
		[]string{"cache", "result"},
	)

	ComparisonStateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_comparison_state_failures_total",
			Help: "Per-state comparison queries that failed",
		},
	)
)
