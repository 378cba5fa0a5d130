// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"testing"
)

func TestLifecycleHappyPath(t *testing.T) {
	t.Parallel()

	lc := newLifecycle()
	for _, next := range []State{
		StateEnvironmentActive,
		StateDependenciesSynced,
		StateProgramRunning,
		StateTerminal,
	} {
		if err := lc.transition(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if !lc.state.IsTerminal() {
		t.Errorf("final state = %s, want terminal", lc.state)
	}
}

func TestLifecycleTerminalReachableFromEveryActiveState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []State
	}{
		{name: "resolve failure", path: nil},
		{name: "sync failure", path: []State{StateEnvironmentActive}},
		{name: "launch failure", path: []State{StateEnvironmentActive, StateDependenciesSynced}},
		{name: "program failure", path: []State{StateEnvironmentActive, StateDependenciesSynced, StateProgramRunning}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lc := newLifecycle()
			for _, s := range tt.path {
				if err := lc.transition(s); err != nil {
					t.Fatalf("transition to %s: %v", s, err)
				}
			}
			if err := lc.transition(StateTerminal); err != nil {
				t.Errorf("transition to terminal from %s: %v", lc.state, err)
			}
		})
	}
}

func TestLifecycleRejectsOutOfSequenceTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from State
		to   State
	}{
		{name: "skip activation", from: StateUninitialized, to: StateDependenciesSynced},
		{name: "skip sync", from: StateEnvironmentActive, to: StateProgramRunning},
		{name: "backwards", from: StateDependenciesSynced, to: StateEnvironmentActive},
		{name: "out of terminal", from: StateTerminal, to: StateTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lc := &lifecycle{state: tt.from}
			err := lc.transition(tt.to)
			if err == nil {
				t.Fatalf("transition %s -> %s succeeded, want error", tt.from, tt.to)
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("error does not wrap ErrInvalidTransition: %v", err)
			}
			if lc.state != tt.from {
				t.Errorf("failed transition mutated state to %s", lc.state)
			}
		})
	}
}
