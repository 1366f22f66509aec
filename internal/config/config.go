package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/regsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Config holds the regsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	RAG       RAGConfig       `yaml:"rag"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RedisConfig holds the Redis connection and the FT index names of the hybrid and section tiers.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HybridIndex      string   `yaml:"hybrid_index"`
	SectionIndex     string   `yaml:"section_index"`
}

// PostgresConfig holds the relational tier connection. An empty DSN disables the tier.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// Neo4jConfig holds the graph tier connection. An empty URI disables the tier.
type Neo4jConfig struct {
	URI               string  `yaml:"uri"`
	Username          string  `yaml:"username"`
	Password          string  `yaml:"password"`
	Database          string  `yaml:"database"`
	FulltextIndex     string  `yaml:"fulltext_index"`
	RelationshipBoost float64 `yaml:"relationship_boost"`
}

// CatalogConfig points at the Badger directory backing the metadata tier.
// An empty path starts with an empty in-memory catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds the query embedding provider. An empty model disables
// embeddings and the hybrid tier runs lexical-only.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"`
}

// SearchConfig tunes the cascade and fusion.
type SearchConfig struct {
	DeadlineMs   int                `yaml:"deadline_ms"`
	Mode         string             `yaml:"mode"` // sequential, fanout, auto
	BudgetsMs    map[string]int     `yaml:"budgets_ms"`
	Weights      map[string]float64 `yaml:"weights"`
	Boost        float64            `yaml:"boost"`
	MinResults   int                `yaml:"min_results"`
	SynonymsFile string             `yaml:"synonyms_file"`
	FanOut       []string           `yaml:"fanout"`
}

// CacheConfig sizes the response cache.
type CacheConfig struct {
	TTLSec   int  `yaml:"ttl_sec"`
	Capacity int  `yaml:"capacity"`
	Shared   bool `yaml:"shared"` // second level in Redis
}

// TelemetryConfig selects telemetry sinks.
type TelemetryConfig struct {
	Log   bool        `yaml:"log"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig enables the Kafka sink when brokers are set.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
	Version  string   `yaml:"version"`
}

// RAGConfig shapes assembled contexts.
type RAGConfig struct {
	Limit    int     `yaml:"limit"`
	MinScore float64 `yaml:"min_score"`
	MaxChars int     `yaml:"max_chars"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Redis.HybridIndex == "" {
		c.Redis.HybridIndex = "regsearch:hybrid"
	}
	if c.Redis.SectionIndex == "" {
		c.Redis.SectionIndex = "regsearch:sections"
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "documents"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutMs <= 0 {
		c.Embedding.TimeoutMs = 2000
	}
	if c.Search.DeadlineMs <= 0 {
		c.Search.DeadlineMs = 500
	}
	if c.Search.Mode == "" {
		c.Search.Mode = string(mode.Sequential)
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 1800
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = 10000
	}
	if len(c.Telemetry.Kafka.Brokers) > 0 && c.Telemetry.Kafka.ClientID == "" {
		c.Telemetry.Kafka.ClientID = "regsearch"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Redis.Addrs) == 0 {
		return errors.New("redis.addrs is required")
	}
	if _, err := mode.Parse(c.Search.Mode); err != nil {
		return fmt.Errorf("search.mode: %w", err)
	}
	for name, ms := range c.Search.BudgetsMs {
		if _, err := tier.Parse(name); err != nil {
			return fmt.Errorf("search.budgets_ms: %w", err)
		}
		if ms <= 0 {
			return fmt.Errorf("search.budgets_ms.%s must be positive, got %d", name, ms)
		}
	}
	for name, w := range c.Search.Weights {
		if _, err := tier.Parse(name); err != nil {
			return fmt.Errorf("search.weights: %w", err)
		}
		if w < 0 {
			return fmt.Errorf("search.weights.%s must not be negative, got %g", name, w)
		}
	}
	for _, name := range c.Search.FanOut {
		if _, err := tier.Parse(name); err != nil {
			return fmt.Errorf("search.fanout: %w", err)
		}
	}
	if c.Search.MinResults < 0 {
		return fmt.Errorf("search.min_results must not be negative, got %d", c.Search.MinResults)
	}
	if c.Search.Boost != 0 && c.Search.Boost < 1 {
		return fmt.Errorf("search.boost must be >= 1, got %g", c.Search.Boost)
	}
	if c.Embedding.Model != "" && c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if len(c.Telemetry.Kafka.Brokers) > 0 && c.Telemetry.Kafka.Topic == "" {
		return errors.New("telemetry.kafka.topic is required when brokers are set")
	}
	if c.RAG.MinScore < 0 {
		return fmt.Errorf("rag.min_score must not be negative, got %g", c.RAG.MinScore)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
