package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{Redis: RedisConfig{Addrs: []string{"localhost:6379"}}}
	cfg.ApplyDefaults()
	return cfg
}

func TestParse_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("REGSEARCH_REDIS", "redis-1:6379")

	data := []byte(`
http:
  port: 9090
redis:
  addrs: ["${REGSEARCH_REDIS}"]
search:
  mode: ${REGSEARCH_MODE:-auto}
  budgets_ms:
    graph: 150
  weights:
    metadata: 0.3
  fanout: [graph, relational, metadata]
telemetry:
  kafka:
    brokers: ["${KAFKA_BROKER:-localhost:9092}"]
    topic: search-telemetry
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if len(cfg.Redis.Addrs) != 1 || cfg.Redis.Addrs[0] != "redis-1:6379" {
		t.Errorf("redis addrs = %v", cfg.Redis.Addrs)
	}
	if cfg.Search.Mode != "auto" {
		t.Errorf("mode = %q, want auto", cfg.Search.Mode)
	}
	if cfg.Search.BudgetsMs["graph"] != 150 {
		t.Errorf("graph budget = %d", cfg.Search.BudgetsMs["graph"])
	}
	if cfg.Telemetry.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("kafka brokers = %v", cfg.Telemetry.Kafka.Brokers)
	}
	if cfg.Telemetry.Kafka.ClientID != "regsearch" {
		t.Errorf("client id = %q", cfg.Telemetry.Kafka.ClientID)
	}

	if cfg.Search.DeadlineMs != 500 {
		t.Errorf("deadline = %d, want 500", cfg.Search.DeadlineMs)
	}
	if cfg.Cache.TTLSec != 1800 || cfg.Cache.Capacity != 10000 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.HybridIndex == "" || cfg.Redis.SectionIndex == "" {
		t.Error("expected default index names")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no redis", func(c *Config) { c.Redis.Addrs = nil }, "redis.addrs is required"},
		{"bad mode", func(c *Config) { c.Search.Mode = "parallel" }, `unknown cascade mode "parallel"`},
		{"unknown budget tier", func(c *Config) { c.Search.BudgetsMs = map[string]int{"vector": 10} }, `unknown tier "vector"`},
		{"zero budget", func(c *Config) { c.Search.BudgetsMs = map[string]int{"graph": 0} }, "search.budgets_ms.graph"},
		{"negative weight", func(c *Config) { c.Search.Weights = map[string]float64{"graph": -1} }, "search.weights.graph"},
		{"unknown fanout tier", func(c *Config) { c.Search.FanOut = []string{"graph", "bm25"} }, "search.fanout"},
		{"boost below one", func(c *Config) { c.Search.Boost = 0.5 }, "search.boost"},
		{"kafka without topic", func(c *Config) { c.Telemetry.Kafka.Brokers = []string{"k:9092"} }, "telemetry.kafka.topic"},
		{"negative min score", func(c *Config) { c.RAG.MinScore = -0.1 }, "rag.min_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SET_VAR", "value")

	got := string(expandEnvVars([]byte("a=${SET_VAR} b=${UNSET_VAR_X:-fallback} c=${UNSET_VAR_X}")))
	want := "a=value b=fallback c="
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if len(cfg.Redis.Addrs) == 0 {
		t.Error("local config should define redis addrs")
	}
}
