// Package tier names the retrieval tiers and their fixed priority order.
package tier

import "fmt"

// ID identifies a retrieval tier.
type ID string

// Tiers in descending priority.
const (
	Hybrid     ID = "hybrid"
	Section    ID = "section"
	Graph      ID = "graph"
	Relational ID = "relational"
	Metadata   ID = "metadata"
)

var order = [...]ID{Hybrid, Section, Graph, Relational, Metadata}

// All returns every tier in priority order.
func All() []ID {
	out := make([]ID, len(order))
	copy(out, order[:])
	return out
}

// Priority returns the rank of the tier, 0 being the highest.
// Unknown tiers rank after every known one.
func (id ID) Priority() int {
	for i, t := range order {
		if t == id {
			return i
		}
	}
	return len(order)
}

// IsValid reports whether id is a known tier.
func (id ID) IsValid() bool {
	return id.Priority() < len(order)
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Parse converts a config string to a tier ID.
func Parse(s string) (ID, error) {
	id := ID(s)
	if !id.IsValid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return id, nil
}

// Before reports whether a outranks b.
func Before(a, b ID) bool {
	return a.Priority() < b.Priority()
}
