package query

import (
	"strings"

	q "github.com/kailas-cloud/regsearch/internal/domain/search/query"
)

// Expander adds synonyms to a normalized query.
type Expander struct {
	table *SynonymTable
}

// NewExpander creates an Expander. A nil table selects the built-in synonyms.
func NewExpander(table *SynonymTable) *Expander {
	if table == nil {
		table = DefaultSynonyms()
	}
	return &Expander{table: table}
}

// Expand returns a copy of sq whose expanded terms are the original terms
// followed by their synonyms. Multi-word synonyms are matched longest first.
// Quoted phrases are appended verbatim and never expanded.
// The output order depends only on the input, so expansion is deterministic.
func (e *Expander) Expand(sq q.SearchQuery) q.SearchQuery {
	terms := sq.Terms()
	out := make([]string, 0, len(terms)*2)
	seen := make(map[string]struct{}, len(terms)*2)
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for i := 0; i < len(terms); {
		n, match := e.longestMatch(terms[i:])
		if n == 0 {
			add(terms[i])
			i++
			continue
		}
		add(match)
		for _, syn := range e.table.Lookup(match) {
			add(syn)
		}
		i += n
	}

	for _, p := range sq.Phrases() {
		add(p)
	}

	return sq.WithExpandedTerms(out)
}

// longestMatch finds the longest group member starting at terms[0].
func (e *Expander) longestMatch(terms []string) (int, string) {
	for n := min(e.table.MaxPhraseWords(), len(terms)); n > 0; n-- {
		candidate := strings.Join(terms[:n], " ")
		if e.table.Has(candidate) {
			return n, candidate
		}
	}
	return 0, ""
}
