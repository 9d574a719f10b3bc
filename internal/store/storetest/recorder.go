// Package storetest provides a recording dispatcher for action layer tests.
package storetest

import (
	"sync"

	"github.com/studiowebux/tokenctl/internal/store"
)

// Recorder records dispatched actions and reduces them into State.
// It applies actions synchronously in the caller's goroutine.
type Recorder struct {
	mu      sync.Mutex
	actions []store.Action
	state   store.State
}

// NewRecorder creates a recorder starting from initial
func NewRecorder(initial store.State) *Recorder {
	return &Recorder{state: initial}
}

// Dispatch records and reduces a
func (r *Recorder) Dispatch(a store.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	r.state = store.Reduce(r.state, a)
}

// Actions returns a copy of everything dispatched so far
func (r *Recorder) Actions() []store.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Types returns the ActionType of every recorded action, in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	for i, a := range r.actions {
		out[i] = a.ActionType()
	}
	return out
}

// Count returns how many recorded actions have the given type name
func (r *Recorder) Count(actionType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.ActionType() == actionType {
			n++
		}
	}
	return n
}

// State returns the reduced state
func (r *Recorder) State() store.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
