// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"fmt"
)

// Run lifecycle states, in sequence order.
const (
	// StateUninitialized is the initial state; nothing acquired yet.
	StateUninitialized State = "uninitialized"
	// StateEnvironmentActive means resolve succeeded; a release is now owed.
	StateEnvironmentActive State = "environment-active"
	// StateDependenciesSynced means the installed set matches the manifest.
	StateDependenciesSynced State = "dependencies-synced"
	// StateProgramRunning means the target program has been started.
	StateProgramRunning State = "program-running"
	// StateTerminal is the final state, reached on success and on every failure.
	StateTerminal State = "terminal"
)

// ErrInvalidTransition is the sentinel error wrapped by InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

type (
	// State is a run lifecycle state.
	State string

	// InvalidTransitionError is returned when a lifecycle transition is
	// attempted out of sequence. It indicates a launcher bug, not a user
	// error.
	InvalidTransitionError struct {
		From State
		To   State
	}

	// lifecycle tracks the run's position in the state sequence.
	lifecycle struct {
		state State
	}
)

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid lifecycle transition %s -> %s", e.From, e.To)
}

// Unwrap returns ErrInvalidTransition for errors.Is() compatibility.
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// IsTerminal reports whether the state is the final one.
func (s State) IsTerminal() bool { return s == StateTerminal }

// String returns the string representation of the State.
func (s State) String() string { return string(s) }

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateUninitialized}
}

// transition performs a validated move to the next state. Terminal is
// reachable from every state at or after EnvironmentActive (that is the
// guaranteed-release path) and directly from Uninitialized when resolve
// itself fails (nothing to release).
func (l *lifecycle) transition(to State) error {
	if !isAllowedTransition(l.state, to) {
		return &InvalidTransitionError{From: l.state, To: to}
	}
	l.state = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	if to == StateTerminal {
		return from != StateTerminal
	}
	switch from {
	case StateUninitialized:
		return to == StateEnvironmentActive
	case StateEnvironmentActive:
		return to == StateDependenciesSynced
	case StateDependenciesSynced:
		return to == StateProgramRunning
	default:
		return false
	}
}
