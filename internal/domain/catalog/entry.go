// Package catalog describes the document catalog that backs the metadata tier.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one catalogued regulatory document.
type Entry struct {
	DocumentID    string    `json:"document_id"`
	Title         string    `json:"title"`
	Citation      string    `json:"citation,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Jurisdiction  string    `json:"jurisdiction,omitempty"`
	DocType       string    `json:"doc_type,omitempty"`
	EffectiveDate time.Time `json:"effective_date,omitzero"`
}

// Validate checks the fields the metadata tier relies on.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.DocumentID) == "" {
		return fmt.Errorf("catalog entry: document_id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("catalog entry %s: title is required", e.DocumentID)
	}
	return nil
}
