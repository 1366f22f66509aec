package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Sequential, FanOut, Auto}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "parallel", "hybrid", "SEQUENTIAL"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("")
	if err != nil || m != Sequential {
		t.Errorf("Parse(\"\") = %q, %v; want sequential", m, err)
	}
	m, err = Parse("fanout")
	if err != nil || m != FanOut {
		t.Errorf("Parse(fanout) = %q, %v", m, err)
	}
	if _, err := Parse("parallel"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
