package cascade

import (
	"fmt"

	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// State is a cascade state.
type State string

// Cascade states.
const (
	NotStarted   State = "not_started"
	Probing      State = "probing"
	Sufficient   State = "sufficient"
	Insufficient State = "insufficient"
	Exhausted    State = "exhausted"
)

// Transition is one recorded state change. Tier is empty for Exhausted.
type Transition struct {
	From State   `json:"from"`
	To   State   `json:"to"`
	Tier tier.ID `json:"tier,omitempty"`
}

// Probing→Probing covers fan-out launches; Insufficient→Sufficient|Insufficient
// covers fan-out members settling after a sibling.
var allowed = map[State][]State{
	NotStarted:   {Probing, Exhausted},
	Probing:      {Probing, Sufficient, Insufficient},
	Insufficient: {Probing, Sufficient, Insufficient, Exhausted},
}

type machine struct {
	state       State
	transitions []Transition
}

func newMachine() *machine {
	return &machine{state: NotStarted}
}

func (m *machine) to(next State, id tier.ID) {
	ok := false
	for _, s := range allowed[m.state] {
		if s == next {
			ok = true
			break
		}
	}
	if !ok {
		panic(fmt.Sprintf("cascade: illegal transition %s -> %s (tier %q)", m.state, next, id))
	}
	m.transitions = append(m.transitions, Transition{From: m.state, To: next, Tier: id})
	m.state = next
}
