package filter

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestNewRangeFilter(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper *float64
		wantErr      bool
	}{
		{"lower only", floatPtr(1), nil, false},
		{"upper only", nil, floatPtr(10), false},
		{"both", floatPtr(1), floatPtr(10), false},
		{"equal bounds", floatPtr(5), floatPtr(5), false},
		{"no bounds", nil, nil, true},
		{"inverted", floatPtr(10), floatPtr(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.lower, tt.upper)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.Min() == nil) != (tt.lower == nil) {
				t.Error("Min() mismatch")
			}
			if (r.Max() == nil) != (tt.upper == nil) {
				t.Error("Max() mismatch")
			}
		})
	}
}

func TestNewMatch_Validation(t *testing.T) {
	if _, err := NewMatch("", "ca"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("jurisdiction", ""); err == nil {
		t.Error("expected error for empty value")
	}

	c, err := NewMatch("jurisdiction", "ca")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsMatch() || c.IsRange() {
		t.Error("expected a match condition")
	}
	if c.Key() != "jurisdiction" || c.Match() != "ca" {
		t.Errorf("unexpected condition: %s=%s", c.Key(), c.Match())
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	if !NewExpression().IsEmpty() {
		t.Error("expected empty expression")
	}

	r, _ := NewRangeFilter(floatPtr(0), nil)
	c, err := NewRange("effective_date", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := NewExpression(c)
	if e.IsEmpty() {
		t.Error("expected non-empty expression")
	}
	if len(e.Must()) != 1 || !e.Must()[0].IsRange() {
		t.Error("expected one range condition")
	}
}
