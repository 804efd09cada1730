package analysis

import (
	"fmt"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

// State is a step of a single analysis.
type State string

const (
	StateReceived    State = "received"
	StateExtracted   State = "extracted"
	StateFactsParsed State = "facts_parsed"
	StateEnriched    State = "enriched"
	StateRendered    State = "rendered"

	StateFailedExtraction State = "failed_extraction"
	StateFailedFacts      State = "failed_facts"
	StateFailedModel      State = "failed_model"
)

// transitions lists the allowed next states. Terminal states have none.
var transitions = map[State][]State{
	StateReceived:    {StateExtracted, StateFailedExtraction},
	StateExtracted:   {StateFactsParsed, StateFailedExtraction, StateFailedFacts, StateRendered},
	StateFactsParsed: {StateEnriched},
	StateEnriched:    {StateRendered, StateFailedModel},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// machine tracks one analysis through its states. Transitions are one-shot.
type machine struct {
	state   State
	history []State
	logger  *observability.Logger
}

func newMachine(logger *observability.Logger) *machine {
	return &machine{state: StateReceived, history: []State{StateReceived}, logger: logger}
}

func (m *machine) to(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.logger.Debug().Str("from", string(m.state)).Str("to", string(next)).Msg("analysis state")
			m.state = next
			m.history = append(m.history, next)
			return nil
		}
	}
	return fmt.Errorf("invalid analysis transition %s -> %s", m.state, next)
}

// fail moves to a failure state and returns err unchanged.
func (m *machine) fail(next State, err error) error {
	if terr := m.to(next); terr != nil {
		m.logger.Error().Err(terr).Msg("analysis state machine misuse")
	}
	return err
}
