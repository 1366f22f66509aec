// Package chi exposes search, context retrieval and health over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/regsearch/internal/logger"
	healthuc "github.com/kailas-cloud/regsearch/internal/usecase/health"
	raguc "github.com/kailas-cloud/regsearch/internal/usecase/rag"
	searchuc "github.com/kailas-cloud/regsearch/internal/usecase/search"
)

const maxBodyBytes = 64 << 10

// Searcher runs searches.
type Searcher interface {
	Search(ctx context.Context, raw string, filters query.FilterInput, limit, offset int) (searchuc.Response, error)
}

// ContextRetriever assembles RAG context.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string, filters query.FilterInput) (raguc.Context, error)
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search  Searcher
	context ContextRetriever
	health  HealthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, ctxRetriever ContextRetriever, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, context: ctxRetriever, health: health, logger: logger}
}

// SearchGet handles GET /v1/search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	params := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"q", &req.Query},
		{"jurisdiction", &req.Jurisdiction},
		{"doc_type", &req.DocType},
		{"date_from", &req.DateFrom},
		{"date_to", &req.DateTo},
		{"limit", &req.Limit},
		{"offset", &req.Offset},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, params, b.dest); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidQuery, "invalid parameter "+b.name)
			return
		}
	}
	s.doSearch(w, r, req)
}

// SearchPost handles POST /v1/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.doSearch(w, r, req)
}

func (s *Server) doSearch(w http.ResponseWriter, r *http.Request, req SearchRequest) {
	r = r.WithContext(logpkg.With(r.Context(), zap.String("operation", "search")))
	resp, err := s.search.Search(r.Context(), req.Query, req.filters(), req.Limit, req.Offset)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	items := make([]SearchItem, len(resp.Results))
	for i, res := range resp.Results {
		items[i] = searchItemFromResult(res)
	}

	w.Header().Set("X-Took-Ms", strconv.FormatInt(resp.TookMs, 10))
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:  items,
		Total:  resp.Total,
		Limit:  effectiveLimit(req.Limit),
		Offset: req.Offset,
		TookMs: resp.TookMs,
	})
}

// Context handles POST /v1/context.
func (s *Server) Context(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	filters := query.FilterInput{
		Jurisdiction: req.Jurisdiction,
		DocType:      req.DocType,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
	}
	r = r.WithContext(logpkg.With(r.Context(), zap.String("operation", "context")))
	out, err := s.context.Retrieve(r.Context(), req.Question, filters)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("X-Took-Ms", strconv.FormatInt(out.TookMs, 10))
	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		CatalogSize: report.CatalogSize,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// handleError maps invalid queries to 400 with their reason. Anything else is
// unexpected, since search absorbs backend failures, and becomes an opaque 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var iq *domain.InvalidQueryError
	if errors.As(err, &iq) {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, iq.Error())
		return
	}
	if errors.Is(err, domain.ErrInvalidQuery) {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, domain.ErrInvalidQuery.Error())
		return
	}
	logpkg.FromContext(r.Context()).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
