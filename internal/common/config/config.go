// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	APIs          APIsConfig              `mapstructure:"apis"`
	RAG           RAGConfig               `mapstructure:"rag"`
	Cache         CacheConfig             `mapstructure:"cache"`
	Analytics     AnalyticsConfig         `mapstructure:"analytics"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPAddress string `mapstructure:"http_address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Graph         GraphConfig         `mapstructure:"graph"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	Index     string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GraphConfig points at the SQLite file holding the citation graph.
type GraphConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for the model services.
type APIsConfig struct {
	GenAI struct {
		APIKey          string `mapstructure:"api_key"`
		GenerationModel string `mapstructure:"generation_model"`
		EmbeddingModel  string `mapstructure:"embedding_model"`
		Timeout         int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`

	Relevance struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"relevance"`
}

// RAGConfig holds the ranking policy knobs of the query pipeline.
type RAGConfig struct {
	RRFK                 int            `mapstructure:"rrf_k"`
	RerankBudget         int            `mapstructure:"rerank_budget"`
	RerankConcurrency    int            `mapstructure:"rerank_concurrency"`
	OversampleFactor     int            `mapstructure:"oversample_factor"`
	DefaultMaxResults    int            `mapstructure:"default_max_results"`
	ComparisonMaxResults int            `mapstructure:"comparison_max_results"`
	CallTimeout          int            `mapstructure:"call_timeout"` // milliseconds
	MaxCitationDepth     int            `mapstructure:"max_citation_depth"`
	Strength             StrengthConfig `mapstructure:"strength"`
}

// StrengthConfig tunes the precedential strength metric.
type StrengthConfig struct {
	HalfLifeYears float64 `mapstructure:"half_life_years"`
	Saturation    float64 `mapstructure:"saturation"`
}

type CacheConfig struct {
	DefinitionTTLSeconds int `mapstructure:"definition_ttl_seconds"`
	ComparisonTTLSeconds int `mapstructure:"comparison_ttl_seconds"`
}

// AnalyticsConfig controls publishing of query events to SNS.
type AnalyticsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// RegistryConfig locates the activity registry with job input schemas.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
