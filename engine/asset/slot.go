// Package asset tracks resources that become available asynchronously.
package asset

import "sync"

// State is the load state of a resource.
type State int

const (
	// NotLoaded means no load has been requested.
	NotLoaded State = iota
	// Loading means a load is in flight.
	Loading
	// Loaded means the resource is available.
	Loaded
	// Failed means the last load attempt returned an error.
	Failed
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot holds a value of T that is only readable once it has been loaded.
// Every accessor checks the state, so callers never observe a zero T by accident.
// The zero Slot is NotLoaded and ready to use.
type Slot[T any] struct {
	mu       sync.RWMutex
	state    State
	inflight bool
	value    T
	err      error
}

// State returns the current load state.
func (s *Slot[T]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Get returns the value and true only when the slot is Loaded.
//
// Returns:
//   - T: the loaded value, or the zero value
//   - bool: true if the value is available
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Loaded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the error recorded by the last Fail, or nil.
func (s *Slot[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Begin marks a load as in flight. A Loaded slot keeps its value until the new load resolves.
//
// Returns:
//   - bool: false if a load is already in flight
func (s *Slot[T]) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		return false
	}
	s.inflight = true
	if s.state != Loaded {
		s.state = Loading
	}
	s.err = nil
	return true
}

// Resolve stores the value and marks the slot Loaded.
func (s *Slot[T]) Resolve(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.err = nil
	s.state = Loaded
	s.inflight = false
}

// Fail records err and marks the slot Failed, dropping any previous value.
func (s *Slot[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.err = err
	s.state = Failed
	s.inflight = false
}

