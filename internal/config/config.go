package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/novanote/novanote/internal/domain"
)

const (
	VectorBackendPgvector = "pgvector"
	VectorBackendQdrant   = "qdrant"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`

	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`

	// OpenAI-compatible provider. API_KEY is accepted as an alias.
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	APIKey              string `envconfig:"API_KEY"`
	OpenAIBaseURL       string `envconfig:"BASE_URL"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string `envconfig:"MODEL" default:"gpt-4o-mini"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"150"`
	SearchK      int `envconfig:"SEARCH_K" default:"4"`

	EmbedTimeout      time.Duration `envconfig:"EMBED_TIMEOUT" default:"15s"`
	SearchTimeout     time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"VECTOR_WRITE_TIMEOUT" default:"30s"`
	CompletionTimeout time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"60s"`
	CrawlTimeout      time.Duration `envconfig:"CRAWL_TIMEOUT" default:"20s"`

	VectorBackend    string `envconfig:"VECTOR_BACKEND" default:"pgvector"`
	QdrantAddr       string `envconfig:"QDRANT_ADDR" default:"localhost:6334"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"novanote_chunks"`

	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	EmbeddingCacheTTL time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"24h"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"novanote-pdfs"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	IndexWorkers      int           `envconfig:"INDEX_WORKERS" default:"4"`
	IndexPollInterval time.Duration `envconfig:"INDEX_POLL_INTERVAL" default:"10s"`

	// Bootstrap: create an initial user and API key on startup
	InitUsername string `envconfig:"INIT_USERNAME"`
	InitAPIKey   string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("NOVANOTE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = cfg.APIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects settings the pipeline cannot run with. Chunking
// parameters are checked here so a bad deployment fails at startup.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return domain.NewDomainError(domain.ErrCodeInvalidConfiguration,
			fmt.Sprintf("chunk overlap must be in [0, chunk size): size=%d overlap=%d", c.ChunkSize, c.ChunkOverlap))
	}
	if c.SearchK <= 0 {
		return domain.NewDomainError(domain.ErrCodeInvalidConfiguration, "SEARCH_K must be positive")
	}
	if c.EmbeddingDimensions <= 0 {
		return domain.NewDomainError(domain.ErrCodeInvalidConfiguration, "EMBEDDING_DIMENSIONS must be positive")
	}
	switch c.VectorBackend {
	case VectorBackendPgvector, VectorBackendQdrant:
	default:
		return domain.NewDomainError(domain.ErrCodeInvalidConfiguration,
			fmt.Sprintf("unknown VECTOR_BACKEND %q", c.VectorBackend))
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

func (c *Config) UsesQdrant() bool {
	return c.VectorBackend == VectorBackendQdrant
}
