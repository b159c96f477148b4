package domain

import "fmt"

// CaseState is a step of the per-case state machine.
type CaseState string

const (
	StatePending           CaseState = "pending"
	StateCleared           CaseState = "cleared"
	StateInjected          CaseState = "injected"
	StateAwaitingStability CaseState = "awaiting-stability"
	StatePassed            CaseState = "passed"
	StateFailed            CaseState = "failed"
	StateTimedOut          CaseState = "timed-out"
	StateErrored           CaseState = "errored"
)

var transitions = map[CaseState][]CaseState{
	StatePending:  {StateCleared, StateFailed, StateErrored},
	StateCleared:  {StateInjected, StateErrored, StateFailed},
	StateInjected: {StateAwaitingStability, StateErrored},
	// The interactive scenario injects again after the partial check.
	StateAwaitingStability: {StatePassed, StateFailed, StateTimedOut, StateErrored, StateInjected, StateCleared},
}

// Terminal reports whether no further transition is allowed.
func (s CaseState) Terminal() bool {
	switch s {
	case StatePassed, StateFailed, StateTimedOut, StateErrored:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal.
func (s CaseState) CanTransition(next CaseState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next, or an error if the move is illegal.
func (s CaseState) Transition(next CaseState) (CaseState, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("illegal case transition %s -> %s", s, next)
	}
	return next, nil
}
