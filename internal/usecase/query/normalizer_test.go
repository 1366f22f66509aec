package query

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/regsearch/internal/domain"
	q "github.com/kailas-cloud/regsearch/internal/domain/search/query"
)

func TestNormalize_LowercasesAndCollapsesWhitespace(t *testing.T) {
	sq, err := Normalize("  EI   Sickness\tBenefits  ", q.FilterInput{}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.Normalized() != "ei sickness benefits" {
		t.Errorf("Normalized() = %q", sq.Normalized())
	}
	if sq.Limit() != q.DefaultLimit {
		t.Errorf("Limit() = %d, want default %d", sq.Limit(), q.DefaultLimit)
	}
}

func TestNormalize_KeepsSectionNumbers(t *testing.T) {
	sq, err := Normalize("What does s.7 and 12(3)(a), §5 say about 7.1?", q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	terms := sq.Terms()
	for _, want := range []string{"s.7", "12(3)(a)", "§5", "7.1"} {
		if !slices.Contains(terms, want) {
			t.Errorf("expected %q in terms %v", want, terms)
		}
	}
	if strings.ContainsAny(sq.Normalized(), "?,") {
		t.Errorf("punctuation survived: %q", sq.Normalized())
	}
}

func TestNormalize_StripsPunctuation(t *testing.T) {
	sq, err := Normalize("employer's self-employed (workers)!", q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"employers", "self", "employed", "workers"}
	if !slices.Equal(sq.Terms(), want) {
		t.Errorf("Terms() = %v, want %v", sq.Terms(), want)
	}
}

func TestNormalize_QuotedPhrases(t *testing.T) {
	sq, err := Normalize(`rates for "Insurable Earnings" and “maximum weekly”`, q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPhrases := []string{"insurable earnings", "maximum weekly"}
	if !slices.Equal(sq.Phrases(), wantPhrases) {
		t.Errorf("Phrases() = %v, want %v", sq.Phrases(), wantPhrases)
	}
	if !slices.Equal(sq.Terms(), []string{"rates", "for", "and"}) {
		t.Errorf("Terms() = %v", sq.Terms())
	}
}

func TestNormalize_UnbalancedQuote(t *testing.T) {
	sq, err := Normalize(`benefit "waiting period`, q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sq.Phrases()) != 0 {
		t.Errorf("unbalanced quote produced phrases %v", sq.Phrases())
	}
	if !slices.Equal(sq.Terms(), []string{"benefit", "waiting", "period"}) {
		t.Errorf("Terms() = %v", sq.Terms())
	}
}

func TestNormalize_NFKC(t *testing.T) {
	sq, err := Normalize("ＥＩ ﬁling", q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.Normalized() != "ei filing" {
		t.Errorf("Normalized() = %q, want %q", sq.Normalized(), "ei filing")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := Normalize(`EI  "Sickness Benefits" s.7`, q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Normalize(first.Normalized(), q.FilterInput{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Normalized() != second.Normalized() {
		t.Errorf("not idempotent: %q vs %q", first.Normalized(), second.Normalized())
	}
}

func TestNormalize_LimitClamp(t *testing.T) {
	sq, err := Normalize("ei", q.FilterInput{}, 1000, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sq.Limit() != q.MaxLimit {
		t.Errorf("Limit() = %d, want %d", sq.Limit(), q.MaxLimit)
	}
	if sq.Offset() != 5 {
		t.Errorf("Offset() = %d, want 5", sq.Offset())
	}
}

func TestNormalize_Filters(t *testing.T) {
	sq, err := Normalize("ei", q.FilterInput{
		Jurisdiction: " CA ",
		DocType:      "Regulation",
		DateFrom:     "2020-01-01",
		DateTo:       "2021-12-31",
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := sq.Filters()
	if f.Jurisdiction() != "ca" || f.DocType() != "regulation" {
		t.Errorf("filters not normalized: %q %q", f.Jurisdiction(), f.DocType())
	}
	from, ok := f.DateFrom()
	if !ok || from.Year() != 2020 {
		t.Errorf("DateFrom() = %v, %v", from, ok)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		filters q.FilterInput
		limit   int
		offset  int
	}{
		{"empty", "", q.FilterInput{}, 10, 0},
		{"whitespace", "   \t ", q.FilterInput{}, 10, 0},
		{"punctuation only", "?!.,", q.FilterInput{}, 10, 0},
		{"too long", strings.Repeat("a", q.MaxQueryLength+1), q.FilterInput{}, 10, 0},
		{"negative offset", "ei", q.FilterInput{}, 10, -1},
		{"offset too large", "ei", q.FilterInput{}, 10, q.MaxOffset + 1},
		{"negative limit", "ei", q.FilterInput{}, -5, 0},
		{"bad date", "ei", q.FilterInput{DateFrom: "01/02/2020"}, 10, 0},
		{"inverted dates", "ei", q.FilterInput{DateFrom: "2022-01-01", DateTo: "2021-01-01"}, 10, 0},
		{"invalid utf8", "ei \xff", q.FilterInput{}, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.filters, tt.limit, tt.offset)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}
