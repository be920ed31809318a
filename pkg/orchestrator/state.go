package orchestrator

import "fmt"

// State is a phase of a conversion run.
type State int

const (
	StateInit State = iota
	StateOpening
	StateStreaming
	StateFinalizing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:       "init",
	StateOpening:    "opening",
	StateStreaming:  "streaming",
	StateFinalizing: "finalizing",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// StateError is returned when a run fails. State is the phase that was
// active when the failure occurred.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
