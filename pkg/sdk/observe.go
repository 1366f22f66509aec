package sdk

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const statusTransportError = "transport_error"

type sdkMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regsearch",
		Subsystem: "sdk",
		Name:      "requests_total",
		Help:      "SDK requests by operation and outcome code.",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "regsearch",
		Subsystem: "sdk",
		Name:      "request_duration_seconds",
		Help:      "SDK request round-trip in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation"})

	if err := registerOrReuse(reg, &requests); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &duration); err != nil {
		return nil, err
	}
	return &sdkMetrics{requests: requests, duration: duration}, nil
}

// registerOrReuse registers c, or points it at the collector already registered
// under the same descriptor so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("regsearch sdk: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("regsearch sdk: metric registered with incompatible type %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// statusLabel is "ok", the server's error code, or transport_error when no
// response was decoded.
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return statusTransportError
	}
	if apiErr.Code == "" {
		return "http_" + fmt.Sprint(apiErr.StatusCode)
	}
	return apiErr.Code
}

type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)
	status := statusLabel(err)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(took.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("regsearch request failed", "op", op, "status", status, "took", took, "error", err)
		return
	}
	o.logger.Debug("regsearch request", "op", op, "took", took)
}
