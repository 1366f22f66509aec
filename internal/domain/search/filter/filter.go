package filter

import "fmt"

// Expression is a conjunction of backend filter conditions.
// Built from query filters by tier adapters; an empty expression matches everything.
type Expression struct {
	must []Condition
}

// NewExpression creates an Expression from conditions that must all hold.
func NewExpression(must ...Condition) Expression {
	return Expression{must: must}
}

// Must returns the conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition is a single filter clause: either a tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is an inclusive numeric range. A nil bound is open.
type Range struct {
	min *float64
	max *float64
}

// NewRangeFilter validates and creates a Range. At least one bound is required.
func NewRangeFilter(lower, upper *float64) (Range, error) {
	if lower == nil && upper == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if lower != nil && upper != nil && *lower > *upper {
		return Range{}, fmt.Errorf("range lower bound %g exceeds upper bound %g", *lower, *upper)
	}
	return Range{min: lower, max: upper}, nil
}

// Min returns the inclusive lower bound.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound.
func (r Range) Max() *float64 { return r.max }
