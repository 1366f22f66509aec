package regsearch

import (
	"fmt"

	"github.com/kailas-cloud/regsearch/internal/config"
)

// Configuration types. They mirror the YAML layout of config/<env>.yaml.
type (
	Config          = config.Config
	HTTPConfig      = config.HTTPConfig
	RedisConfig     = config.RedisConfig
	PostgresConfig  = config.PostgresConfig
	Neo4jConfig     = config.Neo4jConfig
	CatalogConfig   = config.CatalogConfig
	EmbeddingConfig = config.EmbeddingConfig
	SearchConfig    = config.SearchConfig
	CacheConfig     = config.CacheConfig
	TelemetryConfig = config.TelemetryConfig
	KafkaConfig     = config.KafkaConfig
	RAGConfig       = config.RAGConfig
	LoggingConfig   = config.LoggingConfig
)

// LoadConfig reads config/<env>.yaml, expanding ${VAR} and ${VAR:-default}.
func LoadConfig(env string) (Config, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return Config{}, fmt.Errorf("regsearch: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads configuration from an explicit path.
func LoadConfigFile(path string) (Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("regsearch: %w", err)
	}
	return cfg, nil
}
