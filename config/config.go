// Package config loads application configuration from YAML with
// environment expansion.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/expertfind/ai"
	"github.com/poiesic/expertfind/chunker"
	"github.com/poiesic/expertfind/index"
	"github.com/poiesic/expertfind/indexer"
	"github.com/poiesic/expertfind/profiles"
	"github.com/poiesic/expertfind/search"
)

// Config holds the expertfind configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds the MySQL profile store settings.
type DatabaseConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Name     string        `yaml:"name"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Table    string        `yaml:"table"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AIConfig holds the embedding and extraction endpoints.
type AIConfig struct {
	EmbeddingHost     string  `yaml:"embedding_host"`
	EmbeddingModel    string  `yaml:"embedding_model"`
	EmbeddingToken    string  `yaml:"embedding_token"`
	ClassifierHost    string  `yaml:"classifier_host"`
	ClassifierModel   string  `yaml:"classifier_model"`
	ClassifierToken   string  `yaml:"classifier_token"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	MaxParseAttempts  int     `yaml:"max_parse_attempts"`
}

// IndexConfig holds index location, chunking and build settings.
type IndexConfig struct {
	Path         string        `yaml:"path"`
	Splitter     string        `yaml:"splitter"` // window, recursive
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	Metric       string        `yaml:"metric"` // l2, cosine
	Normalize    bool          `yaml:"normalize"`
	BatchSize    int           `yaml:"batch_size"`
	Workers      int           `yaml:"workers"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
}

// SearchConfig holds query-time settings.
type SearchConfig struct {
	TopK               int           `yaml:"top_k"`
	SimilarityMode     string        `yaml:"similarity_mode"` // baseline, distance
	SimilarityBaseline float64       `yaml:"similarity_baseline"`
	EmbeddingTimeout   time.Duration `yaml:"embedding_timeout"`
	ExtractionTimeout  time.Duration `yaml:"extraction_timeout"`
	Dedupe             bool          `yaml:"dedupe"`
	PoolSize           int           `yaml:"pool_size"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is given.
// Fields where zero is meaningful are only defaulted here, so a file can
// still set them to zero.
func Default() Config {
	var c Config
	c.AI.Temperature = ai.DefaultConfig().Temperature
	c.Index.ChunkOverlap = chunker.DefaultChunkOverlap
	c.Search.SimilarityBaseline = search.DefaultBaseline
	c.ApplyDefaults()
	return c
}

// Load reads .env (envFile, or ./.env when envFile is empty and it exists),
// then the YAML file at path. An empty path yields the defaults, still
// subject to validation. ${VAR} and ${VAR:-fallback} are expanded from the
// environment before parsing.
func Load(path, envFile string) (Config, error) {
	if err := loadEnv(envFile); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.ApplyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyDefaults fills zero values that no component accepts.
func (c *Config) ApplyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port <= 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "grandu_db"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Table == "" {
		c.Database.Table = "grandu_user"
	}
	if c.Database.Timeout <= 0 {
		c.Database.Timeout = 10 * time.Second
	}

	aiDefaults := ai.DefaultConfig()
	if c.AI.EmbeddingHost == "" {
		c.AI.EmbeddingHost = aiDefaults.EmbeddingHost
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = aiDefaults.EmbeddingModel
	}
	if c.AI.ClassifierHost == "" {
		c.AI.ClassifierHost = c.AI.EmbeddingHost
	}
	if c.AI.ClassifierModel == "" {
		c.AI.ClassifierModel = aiDefaults.ClassifierModel
	}
	if c.AI.MaxParseAttempts <= 0 {
		c.AI.MaxParseAttempts = aiDefaults.MaxParseAttempts
	}

	build := indexer.DefaultConfig()
	if c.Index.Path == "" {
		c.Index.Path = "faiss_index"
	}
	if c.Index.Splitter == "" {
		c.Index.Splitter = chunker.KindWindow
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = chunker.DefaultChunkSize
	}
	if c.Index.Metric == "" {
		c.Index.Metric = string(index.MetricL2)
	}
	if c.Index.BatchSize <= 0 {
		c.Index.BatchSize = build.BatchSize
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = build.Workers
	}
	if c.Index.MaxRetries <= 0 {
		c.Index.MaxRetries = build.MaxRetries
	}
	if c.Index.RetryDelay <= 0 {
		c.Index.RetryDelay = build.RetryDelay
	}
	if c.Index.LoadTimeout <= 0 {
		c.Index.LoadTimeout = build.LoadTimeout
	}

	if c.Search.TopK <= 0 {
		c.Search.TopK = search.DefaultK
	}
	if c.Search.SimilarityMode == "" {
		c.Search.SimilarityMode = string(search.ModeBaseline)
	}
	if c.Search.EmbeddingTimeout <= 0 {
		c.Search.EmbeddingTimeout = 15 * time.Second
	}
	if c.Search.ExtractionTimeout <= 0 {
		c.Search.ExtractionTimeout = 20 * time.Second
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for values the components would reject.
func (c *Config) Validate() error {
	if c.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", c.Database.Port)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("index.chunk_overlap must be in [0, %d), got %d", c.Index.ChunkSize, c.Index.ChunkOverlap)
	}
	switch c.Index.Splitter {
	case chunker.KindWindow, chunker.KindRecursive:
	default:
		return fmt.Errorf("index.splitter must be \"window\" or \"recursive\", got %q", c.Index.Splitter)
	}
	if _, err := index.ParseMetric(c.Index.Metric); err != nil {
		return fmt.Errorf("index.metric: %w", err)
	}
	if _, err := search.ParseSimilarityMode(c.Search.SimilarityMode); err != nil {
		return fmt.Errorf("search.similarity_mode: %w", err)
	}
	if c.Search.SimilarityBaseline < 0 || c.Search.SimilarityBaseline > 1 {
		return fmt.Errorf("search.similarity_baseline must be in [0, 1], got %v", c.Search.SimilarityBaseline)
	}
	if c.Search.PoolSize < 0 {
		return fmt.Errorf("search.pool_size cannot be negative, got %d", c.Search.PoolSize)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	aiCfg := c.AIConfig()
	if err := aiCfg.Validate(); err != nil {
		return err
	}
	return nil
}

// ProfilesConfig returns the profile store settings.
func (c *Config) ProfilesConfig() profiles.Config {
	return profiles.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		Table:    c.Database.Table,
		Timeout:  c.Database.Timeout,
	}
}

// AIConfig returns the provider settings.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingToken(c.AI.EmbeddingToken),
		ai.WithClassifierHost(c.AI.ClassifierHost),
		ai.WithClassifierModel(c.AI.ClassifierModel),
		ai.WithClassifierToken(c.AI.ClassifierToken),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithRequestsPerSecond(c.AI.RequestsPerSecond),
		ai.WithMaxParseAttempts(c.AI.MaxParseAttempts),
	)
}

// IndexerConfig returns the build-phase settings. The metric must already
// have passed Validate.
func (c *Config) IndexerConfig() *indexer.Config {
	metric, _ := index.ParseMetric(c.Index.Metric)
	return &indexer.Config{
		BatchSize:      c.Index.BatchSize,
		ReportInterval: indexer.DefaultConfig().ReportInterval,
		MaxRetries:     c.Index.MaxRetries,
		RetryDelay:     c.Index.RetryDelay,
		Workers:        c.Index.Workers,
		Metric:         metric,
		Normalize:      c.Index.Normalize,
		EmbeddingModel: c.AI.EmbeddingModel,
		ChunkSize:      c.Index.ChunkSize,
		ChunkOverlap:   c.Index.ChunkOverlap,
		Splitter:       c.Index.Splitter,
		LoadTimeout:    c.Index.LoadTimeout,
	}
}

// Splitter builds the configured chunker.
func (c *Config) Splitter() (chunker.Splitter, error) {
	return chunker.New(c.Index.Splitter, c.Index.ChunkSize, c.Index.ChunkOverlap)
}

// SearchOptions returns the orchestrator options.
func (c *Config) SearchOptions() ([]search.Option, error) {
	mode, err := search.ParseSimilarityMode(c.Search.SimilarityMode)
	if err != nil {
		return nil, err
	}
	opts := []search.Option{
		search.WithSimilarityMode(mode),
		search.WithBaseline(c.Search.SimilarityBaseline),
		search.WithDefaultK(c.Search.TopK),
		search.WithEmbeddingTimeout(c.Search.EmbeddingTimeout),
		search.WithExtractionTimeout(c.Search.ExtractionTimeout),
		search.WithDedupe(c.Search.Dedupe),
	}
	if c.Search.PoolSize > 0 {
		opts = append(opts, search.WithPoolSize(c.Search.PoolSize))
	}
	return opts, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, fallback, hasFallback := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasFallback {
			val = fallback
		}
		return []byte(val)
	})
}
