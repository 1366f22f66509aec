// Package rag assembles cited passages from search results for an answer generator.
package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/usecase/search"
)

// Defaults for Config.
const (
	DefaultLimit    = 20
	DefaultMaxChars = 12000
)

// Searcher is the retrieval contract the context step depends on.
type Searcher interface {
	Search(ctx context.Context, raw string, filters query.FilterInput, limit, offset int) (search.Response, error)
}

// Config shapes the assembled context.
type Config struct {
	Limit    int
	MinScore float64
	MaxChars int
}

// Passage is one numbered piece of context.
type Passage struct {
	N          int     `json:"n"`
	DocumentID string  `json:"document_id"`
	Citation   string  `json:"citation,omitempty"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// Source is what citation extraction needs to resolve "[n]" markers.
type Source struct {
	N          int    `json:"n"`
	DocumentID string `json:"document_id"`
	Citation   string `json:"citation,omitempty"`
}

// Context is the retrieval half of a RAG request.
type Context struct {
	Question  string    `json:"question"`
	Text      string    `json:"text"`
	Passages  []Passage `json:"passages"`
	Sources   []Source  `json:"sources"`
	Truncated bool      `json:"truncated"`
	TookMs    int64     `json:"took_ms"`
}

// Service builds contexts.
type Service struct {
	searcher Searcher
	cfg      Config
	logger   *zap.Logger
}

// New creates a context service. Non-positive limits select the defaults.
func New(s Searcher, cfg Config, logger *zap.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	cfg.Limit = min(cfg.Limit, query.MaxLimit)
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{searcher: s, cfg: cfg, logger: logger}
}

// Retrieve searches for question and packs the results into numbered passages
// within the character budget. Only invalid queries fail.
func (s *Service) Retrieve(ctx context.Context, question string, filters query.FilterInput) (Context, error) {
	resp, err := s.searcher.Search(ctx, question, filters, s.cfg.Limit, 0)
	if err != nil {
		return Context{}, fmt.Errorf("retrieve context: %w", err)
	}

	out := Context{
		Question: question,
		Passages: []Passage{},
		Sources:  []Source{},
		TookMs:   resp.TookMs,
	}

	var b strings.Builder
	budget := s.cfg.MaxChars
	for _, r := range resp.Results {
		if r.Score < s.cfg.MinScore {
			continue
		}
		p := Passage{
			N:          len(out.Passages) + 1,
			DocumentID: r.DocumentID,
			Citation:   r.Citation,
			Title:      r.Title,
			Snippet:    r.Snippet,
			Score:      r.Score,
		}
		line := formatPassage(p)
		if b.Len() > 0 {
			line = "\n\n" + line
		}
		if used := utf8.RuneCountInString(b.String()); used+utf8.RuneCountInString(line) > budget {
			out.Truncated = true
			if len(out.Passages) == 0 {
				b.WriteString(truncateRunes(line, budget))
				out.Passages = append(out.Passages, p)
				out.Sources = append(out.Sources, Source{N: p.N, DocumentID: p.DocumentID, Citation: p.Citation})
			}
			break
		}
		b.WriteString(line)
		out.Passages = append(out.Passages, p)
		out.Sources = append(out.Sources, Source{N: p.N, DocumentID: p.DocumentID, Citation: p.Citation})
	}
	out.Text = b.String()

	s.logger.Debug("Context assembled",
		zap.Int("results", len(resp.Results)),
		zap.Int("passages", len(out.Passages)),
		zap.Int("chars", utf8.RuneCountInString(out.Text)),
		zap.Bool("truncated", out.Truncated),
	)
	return out, nil
}

// formatPassage renders "[n] citation — title: snippet"; the citation part is
// dropped when unknown.
func formatPassage(p Passage) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strconv.Itoa(p.N))
	b.WriteString("] ")
	if p.Citation != "" {
		b.WriteString(p.Citation)
		b.WriteString(" — ")
	}
	b.WriteString(p.Title)
	if p.Snippet != "" {
		b.WriteString(": ")
		b.WriteString(p.Snippet)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
