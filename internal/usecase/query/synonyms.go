package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultGroups are interchangeable regulatory terms. Every member of a group
// expands to every other member.
var defaultGroups = [][]string{
	{"ei", "employment insurance"},
	{"cpp", "canada pension plan"},
	{"oas", "old age security"},
	{"cra", "canada revenue agency"},
	{"osha", "occupational safety and health administration", "occupational safety and health"},
	{"ohs", "occupational health and safety"},
	{"sin", "social insurance number"},
	{"roe", "record of employment"},
	{"gst", "goods and services tax"},
	{"hst", "harmonized sales tax"},
	{"pipeda", "personal information protection and electronic documents act"},
	{"regulation", "reg", "regs"},
	{"section", "sec"},
	{"subsection", "subsec"},
}

// SynonymTable maps a term to the other members of its synonym group.
type SynonymTable struct {
	groups    [][]string
	index     map[string]int
	maxPhrase int
}

type synonymFile struct {
	Groups [][]string `yaml:"groups"`
}

// DefaultSynonyms returns the built-in table.
func DefaultSynonyms() *SynonymTable {
	t, err := NewSynonymTable(defaultGroups)
	if err != nil {
		panic(err) // built-in groups are static
	}
	return t
}

// NewSynonymTable builds a table from groups. Terms are lowercased and
// whitespace-collapsed; a term may belong to only one group.
func NewSynonymTable(groups [][]string) (*SynonymTable, error) {
	t := &SynonymTable{index: make(map[string]int)}
	for _, g := range groups {
		var members []string
		for _, term := range g {
			term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
			if term == "" {
				continue
			}
			if _, dup := t.index[term]; dup {
				return nil, fmt.Errorf("synonym %q appears in more than one group", term)
			}
			t.index[term] = len(t.groups)
			members = append(members, term)
			t.maxPhrase = max(t.maxPhrase, len(strings.Fields(term)))
		}
		if len(members) < 2 {
			for _, m := range members {
				delete(t.index, m)
			}
			continue
		}
		t.groups = append(t.groups, members)
	}
	return t, nil
}

// LoadSynonyms reads a YAML synonym file of the form `groups: [[ei, employment insurance], ...]`.
func LoadSynonyms(path string) (*SynonymTable, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read synonyms %s: %w", path, err)
	}
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}
	t, err := NewSynonymTable(f.Groups)
	if err != nil {
		return nil, fmt.Errorf("synonyms %s: %w", path, err)
	}
	return t, nil
}

// Lookup returns the other members of term's group in declaration order.
func (t *SynonymTable) Lookup(term string) []string {
	gi, ok := t.index[term]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t.groups[gi])-1)
	for _, m := range t.groups[gi] {
		if m != term {
			out = append(out, m)
		}
	}
	return out
}

// Has reports whether term belongs to any group.
func (t *SynonymTable) Has(term string) bool {
	_, ok := t.index[term]
	return ok
}

// MaxPhraseWords is the word count of the longest multi-word member.
func (t *SynonymTable) MaxPhraseWords() int { return t.maxPhrase }
