package orchestrator

import (
	"fmt"
	"sync"
)

type State string

const (
	StateIdle               State = "idle"
	StateCheckingFreshness  State = "checking_freshness"
	StateAwaitingCollection State = "awaiting_collection"
	StateRunning            State = "running"
	StateSummarizing        State = "summarizing"
)

// Idle -> Running is the manual entry point; timer cycles go through
// CheckingFreshness first.
var transitions = map[State][]State{
	StateIdle:               {StateCheckingFreshness, StateRunning},
	StateCheckingFreshness:  {StateAwaitingCollection, StateRunning, StateIdle},
	StateAwaitingCollection: {StateIdle},
	StateRunning:            {StateSummarizing},
	StateSummarizing:        {StateIdle},
}

type machine struct {
	mu    sync.RWMutex
	state State
}

func newMachine() *machine { return &machine{state: StateIdle} }

func (m *machine) current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *machine) to(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("invalid state transition %s -> %s", m.state, next)
}

// reset forces Idle at the start of a cycle.
func (m *machine) reset() { m.force(StateIdle) }

func (m *machine) force(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
