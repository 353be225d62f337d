// Package comparison runs one pipeline query per state and compares the answers.
package comparison

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/metrics"
	"legal-rag-workers/internal/models"
	"legal-rag-workers/internal/stores/cache"
)

const (
	DefaultMaxResults = 3
	DefaultCacheTTL   = 12 * time.Hour
)

// QueryRunner is the query pipeline.
type QueryRunner interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.Response, error)
}

type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, v interface{}) error
}

type Cache interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

type Config struct {
	MaxResults int
	CacheTTL   time.Duration
}

type Orchestrator struct {
	runner    QueryRunner
	generator JSONGenerator
	cache     Cache
	config    Config
	logger    logger.Logger
}

// cachedComparison holds per-state entries only; differences are derived on read.
type cachedComparison struct {
	Entries []models.StateEntry `json:"entries"`
}

// NewOrchestrator accepts a nil generator or cache.
func NewOrchestrator(runner QueryRunner, generator JSONGenerator, c Cache, cfg Config, log logger.Logger) *Orchestrator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Orchestrator{runner: runner, generator: generator, cache: c, config: cfg, logger: log}
}

// Compare expects validated, distinct state codes. A failed state is marked
// unavailable; differences and recommendations cover successful states only.
func (o *Orchestrator) Compare(ctx context.Context, concept string, states []string) (*models.StateComparison, error) {
	key := cache.ComparisonKey(concept, states)

	if entries, ok := o.fromCache(ctx, key, states); ok {
		return Build(concept, states, entries), nil
	}

	entries := make([]models.StateEntry, len(states))
	var wg sync.WaitGroup
	for i, state := range states {
		wg.Add(1)
		go func(i int, state string) {
			defer wg.Done()
			entries[i] = o.compareState(ctx, concept, state)
		}(i, state)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	AssignUniqueFeatures(entries)
	byState := make(map[string]models.StateEntry, len(entries))
	for _, e := range entries {
		byState[e.State] = e
	}
	result := Build(concept, states, byState)

	if o.cache != nil && allAvailable(entries) {
		if err := o.cache.Set(ctx, key, cachedComparison{Entries: entries}, o.config.CacheTTL); err != nil {
			o.logger.Warn("failed to cache comparison", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return result, nil
}

func (o *Orchestrator) fromCache(ctx context.Context, key string, states []string) (map[string]models.StateEntry, bool) {
	if o.cache == nil {
		return nil, false
	}
	var cached cachedComparison
	hit, err := o.cache.Get(ctx, key, &cached)
	if err != nil {
		o.logger.Warn("comparison cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	if !hit {
		return nil, false
	}

	byState := make(map[string]models.StateEntry, len(cached.Entries))
	for _, e := range cached.Entries {
		byState[e.State] = e
	}
	for _, s := range states {
		if _, ok := byState[s]; !ok {
			return nil, false
		}
	}
	return byState, true
}

func (o *Orchestrator) compareState(ctx context.Context, concept, state string) models.StateEntry {
	resp, err := o.runner.Query(ctx, models.QueryRequest{
		Question:     fmt.Sprintf("%s in %s", concept, state),
		Jurisdiction: state,
		MaxResults:   o.config.MaxResults,
	})
	if err != nil {
		metrics.ComparisonStateFailures.Inc()
		o.logger.Warn("state comparison query failed", map[string]interface{}{
			"state": state,
			"error": err.Error(),
		})
		return models.StateEntry{State: state, Available: false, Error: string(errors.Normalize(err).Code)}
	}

	entry := o.summarize(ctx, concept, state, resp)
	entry.State = state
	entry.Available = true
	entry.Confidence = resp.Confidence
	return entry
}

type summary struct {
	LegalSystem      string   `json:"legal_system"`
	KeyRules         []string `json:"key_rules"`
	StatuteCitations []string `json:"statute_citations"`
	UniqueFeatures   []string `json:"unique_features"`
}

// summarize asks the generator for a structured summary and falls back to
// extracting one from the ranked results.
func (o *Orchestrator) summarize(ctx context.Context, concept, state string, resp *models.Response) models.StateEntry {
	fallback := Extract(concept, state, resp.Results)
	if o.generator == nil || len(resp.Results) == 0 {
		return fallback
	}

	var s summary
	if err := o.generator.GenerateJSON(ctx, summaryPrompt(concept, state, resp.Results), &s); err != nil {
		o.logger.Debug("comparison summary generation failed, extracting", map[string]interface{}{
			"state": state,
			"error": err.Error(),
		})
		return fallback
	}

	entry := models.StateEntry{
		LegalSystem:      strings.TrimSpace(s.LegalSystem),
		KeyRules:         dedupe(s.KeyRules),
		StatuteCitations: dedupe(append(fallback.StatuteCitations, s.StatuteCitations...)),
		UniqueFeatures:   dedupe(s.UniqueFeatures),
	}
	if entry.LegalSystem == "" {
		entry.LegalSystem = fallback.LegalSystem
	}
	if len(entry.KeyRules) == 0 {
		entry.KeyRules = fallback.KeyRules
	}
	return entry
}

func summaryPrompt(concept, state string, results []models.RankedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize how %s works in %s using only these sources.\n\n", concept, state)
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, r.Metadata.Title, r.Metadata.Citation, r.Excerpt)
	}
	b.WriteString(`Return a JSON object with "legal_system" (short label), "key_rules" (list of one-sentence rules), ` +
		`"statute_citations" (list) and "unique_features" (list of features specific to this state).`)
	return b.String()
}

func allAvailable(entries []models.StateEntry) bool {
	for _, e := range entries {
		if !e.Available {
			return false
		}
	}
	return true
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		k := strings.ToLower(it)
		if it == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
