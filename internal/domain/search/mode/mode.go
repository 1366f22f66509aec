package mode

import "fmt"

// Mode is the cascade execution strategy.
type Mode string

// Cascade mode constants.
const (
	// Sequential probes tiers one at a time in priority order.
	Sequential Mode = "sequential"
	// FanOut probes the configured tier group concurrently.
	FanOut Mode = "fanout"
	// Auto picks fan-out when the deadline cannot cover every tier budget sequentially.
	Auto Mode = "auto"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Sequential || m == FanOut || m == Auto
}

// Parse converts a config string to a Mode. Empty means Sequential.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Sequential, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown cascade mode %q", s)
	}
	return m, nil
}
