package view

import (
	"sync"

	"github.com/nyc-osyd/atlas-cli/internal/model"
	"github.com/nyc-osyd/atlas-cli/internal/store"
)

// Session serializes event dispatch for one interactive client. Events are
// applied strictly in arrival order under one mutex, and a reload swaps
// the snapshot and re-validates the state as a single serialized step, so
// no stale recompute can land after a newer one.
type Session struct {
	mu       sync.Mutex
	state    ViewState
	criteria model.PriorityCriteria
	holder   *store.Holder
}

// NewSession creates a session in the initial Overview state.
func NewSession(holder *store.Holder, criteria model.PriorityCriteria) *Session {
	return &Session{
		state:    NewViewState(),
		criteria: criteria,
		holder:   holder,
	}
}

// Dispatch applies one event against the active snapshot and returns the
// resulting state.
func (s *Session) Dispatch(ev Event) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(ev, s.state, s.holder.Current())
	return s.state
}

// Reload publishes a new snapshot and re-validates the navigation state
// against it.
func (s *Session) Reload(ns *store.EntityStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holder.Swap(ns)
	s.state = Apply(StoreReloaded{}, s.state, ns)
}

// State returns the current navigation state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetCriteria replaces the active priority criteria.
func (s *Session) SetCriteria(c model.PriorityCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
}

// Criteria returns the active priority criteria.
func (s *Session) Criteria() model.PriorityCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Store returns the active snapshot.
func (s *Session) Store() *store.EntityStore {
	return s.holder.Current()
}

// ViewModel computes the renderable model from the current state and the
// active snapshot.
func (s *Session) ViewModel() ViewModel {
	s.mu.Lock()
	state, criteria := s.state, s.criteria
	s.mu.Unlock()
	return ComputeViewModel(s.holder.Current(), state, criteria)
}
