package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
)

type keyParts struct {
	Normalized string   `json:"n"`
	Expanded   []string `json:"e"`
	Filters    string   `json:"f"`
	Limit      int      `json:"l"`
	Offset     int      `json:"o"`
}

// Key returns the hex SHA-256 of the canonical encoding of q's normalized
// text, expanded terms, filters, limit and offset.
func Key(q query.SearchQuery) string {
	data, _ := json.Marshal(keyParts{
		Normalized: q.Normalized(),
		Expanded:   q.ExpandedTerms(),
		Filters:    q.Filters().Canonical(),
		Limit:      q.Limit(),
		Offset:     q.Offset(),
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
