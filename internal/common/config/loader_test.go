package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: legal
    user: legal
    password: ${TEST_LEGAL_DB_PASSWORD}
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
workers:
  legal-query:
    enabled: true
    timeout: 20000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.RAG.RRFK)
	assert.Equal(t, 20, cfg.RAG.RerankBudget)
	assert.Equal(t, 2, cfg.RAG.OversampleFactor)
	assert.Equal(t, 5, cfg.RAG.DefaultMaxResults)
	assert.Equal(t, 3, cfg.RAG.ComparisonMaxResults)
	assert.Equal(t, 43200, cfg.Cache.ComparisonTTLSeconds)
	assert.Equal(t, "legal_documents", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)

	wc := cfg.Workers["legal-query"]
	assert.True(t, wc.Enabled)
	assert.Equal(t, 20000, wc.Timeout)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 3, wc.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_LEGAL_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	body := `
database:
  postgres:
    host: localhost
    database: legal
    user: legal
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
`
	_, err := LoadFromFile(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestLoadFromFile_AnalyticsRequiresTopic(t *testing.T) {
	t.Setenv("ANALYTICS_TOPIC_ARN", "")
	body := minimalConfig + `
analytics:
  enabled: true
`
	_, err := LoadFromFile(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics.topic_arn")
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{}}

	wc := GetWorkerConfig(cfg, "analyze-citation-network")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 30000, wc.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "analyze-citation-network"))

	cfg.Workers["analyze-citation-network"] = WorkerConfig{Enabled: false}
	assert.False(t, IsWorkerEnabled(cfg, "analyze-citation-network"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, 12*time.Hour, GetSeconds(43200))
}
