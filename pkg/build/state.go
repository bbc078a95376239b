package build

import (
	"fmt"
	"slices"
)

// State is a phase of a build run.
type State string

const (
	StateInit        State = "init"
	StateScaffolding State = "scaffolding"
	StateReconciling State = "reconciling"
	StateBuilding    State = "building"
	StateAssembling  State = "assembling"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// IsTerminal reports whether the run has finished.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// allowed lists the valid successors of each state.
var allowed = map[State][]State{
	StateInit:        {StateScaffolding},
	StateScaffolding: {StateReconciling},
	StateReconciling: {StateBuilding, StateFailed},
	StateBuilding:    {StateAssembling, StateDone, StateFailed},
	StateAssembling:  {StateDone},
}

// machine tracks the current state and every state visited.
type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateInit, history: []State{StateInit}}
}

// transition moves to the next state if the move is allowed.
func (m *machine) transition(to State) error {
	if !slices.Contains(allowed[m.current], to) {
		return fmt.Errorf("disallowed transition: %s -> %s", m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}
