// Package health reports backend availability for the search tiers.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one tier backend is failing; search still answers.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	CatalogSize int
}

// Service coordinates health checks.
type Service struct {
	backends  map[string]Pinger
	embedding EmbeddingChecker
	catalog   CatalogSizer
	timeout   time.Duration
}

// New creates a Service. backends maps a component name ("redis", "postgres",
// "neo4j") to its pinger; nil entries are skipped. embedding and catalog can be nil.
func New(backends map[string]Pinger, embedding EmbeddingChecker, catalog CatalogSizer) *Service {
	live := make(map[string]Pinger, len(backends))
	for name, p := range backends {
		if p != nil {
			live[name] = p
		}
	}
	return &Service{backends: live, embedding: embedding, catalog: catalog, timeout: DefaultCheckTimeout}
}

// Check runs every health check concurrently.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.backends)+2)
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		res := CheckOK
		if err := fn(cctx); err != nil {
			res = CheckError
		}
		mu.Lock()
		checks[name] = res
		mu.Unlock()
	}

	for name, p := range s.backends {
		wg.Add(1)
		go run(name, p.Ping)
	}
	if s.embedding != nil {
		wg.Add(1)
		go run("embedding", s.embedding.HealthCheck)
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: checks}
	if s.catalog != nil {
		checks["metadata"] = CheckOK
		report.CatalogSize = s.catalog.Size()
	}
	for _, v := range checks {
		if v == CheckError {
			report.Status = Degraded
			break
		}
	}
	return report
}
