package query

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format for date filters.
const DateLayout = "2006-01-02"

// FilterInput holds caller-supplied filters before validation.
type FilterInput struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
}

// Filters restricts results by jurisdiction, document type and effective date.
type Filters struct {
	jurisdiction string
	docType      string
	dateFrom     *time.Time
	dateTo       *time.Time
}

// NewFilters creates Filters. Dates are inclusive; either may be nil.
func NewFilters(jurisdiction, docType string, from, to *time.Time) Filters {
	f := Filters{jurisdiction: jurisdiction, docType: docType}
	if from != nil {
		d := from.UTC()
		f.dateFrom = &d
	}
	if to != nil {
		d := to.UTC()
		f.dateTo = &d
	}
	return f
}

// Jurisdiction returns the jurisdiction filter, empty when unset.
func (f Filters) Jurisdiction() string { return f.jurisdiction }

// DocType returns the document type filter, empty when unset.
func (f Filters) DocType() string { return f.docType }

// DateFrom returns the inclusive lower date bound.
func (f Filters) DateFrom() (time.Time, bool) {
	if f.dateFrom == nil {
		return time.Time{}, false
	}
	return *f.dateFrom, true
}

// DateTo returns the inclusive upper date bound.
func (f Filters) DateTo() (time.Time, bool) {
	if f.dateTo == nil {
		return time.Time{}, false
	}
	return *f.dateTo, true
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.jurisdiction == "" && f.docType == "" && f.dateFrom == nil && f.dateTo == nil
}

// Matches reports whether a document with the given attributes passes the filters.
// A zero effective date never fails a date bound.
func (f Filters) Matches(jurisdiction, docType string, effective time.Time) bool {
	if f.jurisdiction != "" && f.jurisdiction != jurisdiction {
		return false
	}
	if f.docType != "" && f.docType != docType {
		return false
	}
	if effective.IsZero() {
		return true
	}
	if f.dateFrom != nil && effective.Before(*f.dateFrom) {
		return false
	}
	if f.dateTo != nil && effective.After(*f.dateTo) {
		return false
	}
	return true
}

type canonicalFilters struct {
	Jurisdiction string `json:"j"`
	DocType      string `json:"t"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// Canonical renders the filters in a stable, unambiguous form for cache keys.
// Dates keep their full UTC timestamp since date bounds filter on it.
func (f Filters) Canonical() string {
	c := canonicalFilters{Jurisdiction: f.jurisdiction, DocType: f.docType}
	if f.dateFrom != nil {
		c.From = f.dateFrom.Format(time.RFC3339Nano)
	}
	if f.dateTo != nil {
		c.To = f.dateTo.Format(time.RFC3339Nano)
	}
	data, _ := json.Marshal(c)
	return string(data)
}
