// Package metadata is the in-process last-resort tier: exact and substring
// matches on catalog titles and tags.
package metadata

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/domain/catalog"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Source loads the catalog, e.g. the Badger catalog store.
type Source interface {
	All(ctx context.Context) ([]catalog.Entry, error)
}

type match int

const (
	exactTitle match = iota
	titleSubstring
	tagMatch
	noMatch
)

type doc struct {
	entry catalog.Entry
	title string
	// words is the title as space-padded words, for word-bounded term matches.
	words string
	tags  []string
}

type snapshot struct {
	docs []doc
}

// Adapter implements the metadata tier over an immutable snapshot that can be
// swapped atomically.
type Adapter struct {
	snap   atomic.Pointer[snapshot]
	source Source
	logger *zap.Logger
}

// New creates an adapter over a fixed set of entries.
func New(entries []catalog.Entry, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{logger: logger.Named("metadata")}
	a.Replace(entries)
	return a
}

// Load creates an adapter and fills it from src.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Adapter, error) {
	a := New(nil, logger)
	a.source = src
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload re-reads the source and swaps the snapshot. Probes in flight keep
// the snapshot they started with.
func (a *Adapter) Reload(ctx context.Context) error {
	if a.source == nil {
		return fmt.Errorf("metadata: no catalog source configured")
	}
	entries, err := a.source.All(ctx)
	if err != nil {
		return fmt.Errorf("metadata: load catalog: %w", err)
	}
	a.Replace(entries)
	a.logger.Info("Catalog loaded", zap.Int("entries", len(entries)))
	return nil
}

// Replace swaps in a new snapshot built from entries. Invalid entries are skipped.
func (a *Adapter) Replace(entries []catalog.Entry) {
	s := &snapshot{docs: make([]doc, 0, len(entries))}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			a.logger.Warn("Skipping catalog entry", zap.Error(err))
			continue
		}
		d := doc{entry: e, title: strings.ToLower(e.Title)}
		d.words = padWords(d.title)
		for _, t := range e.Tags {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				d.tags = append(d.tags, t)
			}
		}
		s.docs = append(s.docs, d)
	}
	a.snap.Store(s)
}

// Size returns the number of catalogued documents.
func (a *Adapter) Size() int {
	return len(a.snap.Load().docs)
}

// Tier returns tier.Metadata.
func (a *Adapter) Tier() tier.ID { return tier.Metadata }

// Probe never fails: no match is a successful empty outcome.
func (a *Adapter) Probe(_ context.Context, q query.SearchQuery, limit int) ([]result.Raw, error) {
	needles := needles(q)
	if len(needles) == 0 {
		return nil, nil
	}
	full := q.Normalized()
	filters := q.Filters()

	type hit struct {
		d *doc
		m match
	}
	var hits []hit
	s := a.snap.Load()
	for i := range s.docs {
		d := &s.docs[i]
		if !filters.Matches(d.entry.Jurisdiction, d.entry.DocType, d.entry.EffectiveDate) {
			continue
		}
		if m := classify(d, full, needles); m != noMatch {
			hits = append(hits, hit{d: d, m: m})
		}
	}

	slices.SortFunc(hits, func(x, y hit) int {
		if c := cmp.Compare(x.m, y.m); c != 0 {
			return c
		}
		if c := y.d.entry.EffectiveDate.Compare(x.d.entry.EffectiveDate); c != 0 {
			return c
		}
		return cmp.Compare(x.d.entry.DocumentID, y.d.entry.DocumentID)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]result.Raw, 0, len(hits))
	for _, h := range hits {
		e := h.d.entry
		snippet := e.Summary
		if snippet == "" {
			snippet = e.Title
		}
		out = append(out, result.Raw{
			DocumentID:    e.DocumentID,
			Title:         e.Title,
			Snippet:       snippet,
			SourceTier:    tier.Metadata,
			Citation:      e.Citation,
			EffectiveDate: e.EffectiveDate,
			Jurisdiction:  e.Jurisdiction,
			DocType:       e.DocType,
		})
	}
	return out, nil
}

// needles are the full normalized text followed by expanded terms, minus stopwords.
func needles(q query.SearchQuery) []string {
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || query.IsStopword(s) || slices.Contains(out, s) {
			return
		}
		out = append(out, s)
	}
	add(q.Normalized())
	for _, t := range q.ExpandedTerms() {
		add(t)
	}
	return out
}

func classify(d *doc, full string, needles []string) match {
	for _, n := range needles {
		if d.title == n {
			return exactTitle
		}
	}
	if full != "" && strings.Contains(d.title, strings.ToLower(full)) {
		return titleSubstring
	}
	for _, n := range needles {
		if strings.Contains(d.words, padWords(n)) {
			return titleSubstring
		}
	}
	for _, t := range d.tags {
		if slices.Contains(needles, t) {
			return tagMatch
		}
	}
	return noMatch
}

func padWords(s string) string {
	return " " + strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '§'
	}), " ") + " "
}
