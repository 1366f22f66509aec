package query

import (
	"slices"
	"testing"
	"time"
)

func TestNew_NormalizedJoinsTermsAndPhrases(t *testing.T) {
	q := New(`EI "sickness benefits"`, []string{"ei"}, []string{"sickness benefits"}, Filters{}, 10, 0)

	if q.Normalized() != "ei sickness benefits" {
		t.Errorf("Normalized() = %q", q.Normalized())
	}
	if q.Raw() != `EI "sickness benefits"` {
		t.Errorf("Raw() = %q", q.Raw())
	}
}

func TestExpandedTerms_FallsBackToTerms(t *testing.T) {
	q := New("x", []string{"ei", "rates"}, []string{"sickness benefits"}, Filters{}, 10, 0)

	got := q.ExpandedTerms()
	want := []string{"ei", "rates", "sickness benefits"}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandedTerms() = %v, want %v", got, want)
	}

	expanded := q.WithExpandedTerms([]string{"ei", "employment insurance"})
	if !slices.Equal(expanded.ExpandedTerms(), []string{"ei", "employment insurance"}) {
		t.Errorf("unexpected expansion: %v", expanded.ExpandedTerms())
	}
	if !slices.Equal(q.ExpandedTerms(), want) {
		t.Error("WithExpandedTerms mutated the original")
	}
}

func TestGettersReturnCopies(t *testing.T) {
	q := New("x", []string{"ei"}, nil, Filters{}, 10, 0)
	terms := q.Terms()
	terms[0] = "cpp"
	if q.Terms()[0] != "ei" {
		t.Error("Terms() exposes internal slice")
	}
}

func TestExactTerms_DropsStopwordsKeepsPhrases(t *testing.T) {
	q := New("x", []string{"what", "is", "the", "ei", "rate", "ei"}, []string{"of the"}, Filters{}, 10, 0)

	got := q.ExactTerms()
	want := []string{"ei", "rate", "of the"}
	if !slices.Equal(got, want) {
		t.Errorf("ExactTerms() = %v, want %v", got, want)
	}
}

func TestFetchSize(t *testing.T) {
	if got := New("x", []string{"a"}, nil, Filters{}, 10, 20).FetchSize(); got != 30 {
		t.Errorf("FetchSize() = %d, want 30", got)
	}
	if got := New("x", []string{"a"}, nil, Filters{}, MaxLimit, MaxOffset).FetchSize(); got != MaxFetch {
		t.Errorf("FetchSize() = %d, want %d", got, MaxFetch)
	}
}

func TestFilters_Matches(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	f := NewFilters("ca", "regulation", &from, &to)

	tests := []struct {
		name string
		jur  string
		typ  string
		date time.Time
		want bool
	}{
		{"inside", "ca", "regulation", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"lower bound inclusive", "ca", "regulation", from, true},
		{"upper bound inclusive", "ca", "regulation", to, true},
		{"too early", "ca", "regulation", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"too late", "ca", "regulation", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"wrong jurisdiction", "us", "regulation", from, false},
		{"wrong type", "ca", "statute", from, false},
		{"undated passes", "ca", "regulation", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Matches(tt.jur, tt.typ, tt.date); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilters_Canonical(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewFilters("ca", "", &from, nil)
	b := NewFilters("ca", "", &from, nil)
	if a.Canonical() != b.Canonical() {
		t.Error("equal filters must render identically")
	}
	if a.Canonical() == NewFilters("ca", "", nil, nil).Canonical() {
		t.Error("date bound must change the canonical form")
	}
	if !NewFilters("", "", nil, nil).IsEmpty() {
		t.Error("expected empty filters")
	}
}

func TestFilters_CanonicalKeepsTimeOfDay(t *testing.T) {
	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	if NewFilters("", "", &midnight, nil).Canonical() == NewFilters("", "", &evening, nil).Canonical() {
		t.Error("bounds on the same day at different times must render differently")
	}
}

func TestFilters_CanonicalFieldsDoNotBleed(t *testing.T) {
	a := NewFilters("a;t=b", "c", nil, nil)
	b := NewFilters("a", "b;t=c", nil, nil)
	if a.Canonical() == b.Canonical() {
		t.Errorf("distinct filters collide: %s", a.Canonical())
	}
}
