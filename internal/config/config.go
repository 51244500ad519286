package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	YouTube       YouTubeConfig       `yaml:"youtube"`
	Validation    ValidationConfig    `yaml:"validation"`
	Resolver      ResolverConfig      `yaml:"resolver"`
	Ingestion     IngestionConfig     `yaml:"ingestion"`
	NegativeCache NegativeCacheConfig `yaml:"negative_cache"`
	Worker        WorkerConfig        `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects the curated video store backend.
type StorageConfig struct {
	Driver      string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	DSN         string `yaml:"dsn" envconfig:"STORAGE_DSN"`
	SeedCatalog bool   `yaml:"seed_catalog" envconfig:"STORAGE_SEED_CATALOG"`
}

// YouTubeConfig holds video platform access configuration.
// An empty APIKey disables the Data API tiers (search and metadata checks).
type YouTubeConfig struct {
	APIKey           string        `yaml:"api_key" envconfig:"YOUTUBE_API_KEY"`
	Endpoint         string        `yaml:"endpoint" envconfig:"YOUTUBE_ENDPOINT"`
	OEmbedURL        string        `yaml:"oembed_url" envconfig:"YOUTUBE_OEMBED_URL"`
	ProbeURLTemplate string        `yaml:"probe_url_template" envconfig:"YOUTUBE_PROBE_URL_TEMPLATE"`
	APITimeout       time.Duration `yaml:"api_timeout" envconfig:"YOUTUBE_API_TIMEOUT"`
	EmbedTimeout     time.Duration `yaml:"embed_timeout" envconfig:"YOUTUBE_EMBED_TIMEOUT"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout" envconfig:"YOUTUBE_PROBE_TIMEOUT"`
	SearchTimeout    time.Duration `yaml:"search_timeout" envconfig:"YOUTUBE_SEARCH_TIMEOUT"`
	MaxResults       int64         `yaml:"max_results" envconfig:"YOUTUBE_MAX_RESULTS"`
	RegionCode       string        `yaml:"region_code" envconfig:"YOUTUBE_REGION_CODE"`
	SafeSearch       string        `yaml:"safe_search" envconfig:"YOUTUBE_SAFE_SEARCH"`
	UserAgent        string        `yaml:"user_agent" envconfig:"YOUTUBE_USER_AGENT"`
}

// ValidationConfig tunes the video validator.
type ValidationConfig struct {
	BatchDelay time.Duration `yaml:"batch_delay" envconfig:"VALIDATION_BATCH_DELAY"`
	// CacheExhaustedFailures writes all_methods_failed outcomes to the negative cache.
	CacheExhaustedFailures bool `yaml:"cache_exhausted_failures" envconfig:"VALIDATION_CACHE_EXHAUSTED_FAILURES"`
}

// ResolverConfig tunes the resolution fallback chain.
type ResolverConfig struct {
	StaticFallback  bool     `yaml:"static_fallback" envconfig:"RESOLVER_STATIC_FALLBACK"`
	PersistLiveHits bool     `yaml:"persist_live_hits" envconfig:"RESOLVER_PERSIST_LIVE_HITS"`
	SafeChannels    []string `yaml:"safe_channels" envconfig:"RESOLVER_SAFE_CHANNELS"`
	YoungGradeMax   int      `yaml:"young_grade_max" envconfig:"RESOLVER_YOUNG_GRADE_MAX"`
}

// IngestionConfig tunes the batch ingestion pipeline.
type IngestionConfig struct {
	Subjects         []string      `yaml:"subjects" envconfig:"INGESTION_SUBJECTS"`
	ClassLevels      []string      `yaml:"class_levels" envconfig:"INGESTION_CLASS_LEVELS"`
	QueriesPerCell   int           `yaml:"queries_per_cell" envconfig:"INGESTION_QUERIES_PER_CELL"`
	MaxResults       int64         `yaml:"max_results" envconfig:"INGESTION_MAX_RESULTS"`
	SearchDelay      time.Duration `yaml:"search_delay" envconfig:"INGESTION_SEARCH_DELAY"`
	InsertRetryDelay time.Duration `yaml:"insert_retry_delay" envconfig:"INGESTION_INSERT_RETRY_DELAY"`
}

// NegativeCacheConfig configures optional persistence of the negative cache.
// An empty RedisAddr keeps the cache in-process only.
type NegativeCacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr" envconfig:"NEGATIVE_CACHE_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"NEGATIVE_CACHE_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"NEGATIVE_CACHE_REDIS_DB"`
	Key           string        `yaml:"key" envconfig:"NEGATIVE_CACHE_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"NEGATIVE_CACHE_TIMEOUT"`
}

// WorkerConfig holds admin job worker configuration.
type WorkerConfig struct {
	Count              int           `yaml:"count" envconfig:"WORKER_COUNT"`
	PollInterval       time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL"`
	MaxRetries         int           `yaml:"max_retries" envconfig:"WORKER_MAX_RETRIES"`
	RevalidateInterval time.Duration `yaml:"revalidate_interval" envconfig:"WORKER_REVALIDATE_INTERVAL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9850,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:      DriverSQLite,
			DSN:         "/data/learnvid.db",
			SeedCatalog: true,
		},
		YouTube: YouTubeConfig{
			OEmbedURL:        "https://www.youtube.com/oembed",
			ProbeURLTemplate: "https://img.youtube.com/vi/%s/mqdefault.jpg",
			APITimeout:       8 * time.Second,
			EmbedTimeout:     5 * time.Second,
			ProbeTimeout:     5 * time.Second,
			SearchTimeout:    10 * time.Second,
			MaxResults:       10,
			RegionCode:       "IN",
			SafeSearch:       "strict",
			UserAgent:        "learnvid/1.0",
		},
		Validation: ValidationConfig{
			BatchDelay: 200 * time.Millisecond,
		},
		Resolver: ResolverConfig{
			StaticFallback:  true,
			PersistLiveHits: true,
			YoungGradeMax:   3,
		},
		Ingestion: IngestionConfig{
			Subjects:         []string{"mathematics", "science", "english", "hindi", "social_studies"},
			ClassLevels:      []string{"1-3", "4-6", "7-8", "9-10", "11-12"},
			QueriesPerCell:   3,
			MaxResults:       10,
			SearchDelay:      time.Second,
			InsertRetryDelay: 2 * time.Second,
		},
		NegativeCache: NegativeCacheConfig{
			Key:     "learnvid:negative-cache",
			Timeout: 2 * time.Second,
		},
		Worker: WorkerConfig{
			Count:              1,
			PollInterval:       5 * time.Second,
			MaxRetries:         2,
			RevalidateInterval: 24 * time.Hour,
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
// Missing platform credentials are allowed: those tiers are skipped at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("STORAGE_DSN is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.YouTube.ProbeURLTemplate != "" && !strings.Contains(c.YouTube.ProbeURLTemplate, "%s") {
		return fmt.Errorf("YOUTUBE_PROBE_URL_TEMPLATE must contain %%s")
	}
	if c.YouTube.MaxResults <= 0 || c.YouTube.MaxResults > 50 {
		return fmt.Errorf("YOUTUBE_MAX_RESULTS must be between 1 and 50")
	}
	if c.Ingestion.QueriesPerCell <= 0 {
		return fmt.Errorf("INGESTION_QUERIES_PER_CELL must be positive")
	}
	return nil
}

// ValidateServer additionally checks settings only the HTTP service needs.
func (c *Config) ValidateServer() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether the Data API credential is present.
func (c *YouTubeConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
