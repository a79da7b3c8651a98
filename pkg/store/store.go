package store

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownMutation indicates a commit for a type with no handler.
	ErrUnknownMutation = errors.New("store: unknown mutation type")
	// ErrDuplicateMutation indicates two handlers registered for one type.
	ErrDuplicateMutation = errors.New("store: mutation type already registered")
	// ErrDuplicateModule indicates a module name registered twice.
	ErrDuplicateModule = errors.New("store: module already registered")
)

// Store is a minimal synchronous reactive store. Commits are serialized: the
// mutation handler and every subscriber run to completion before the next
// commit starts, in commit order. Subscribers may call State and ReplaceState
// but must not Commit, which would deadlock.
type Store struct {
	commitMu sync.Mutex

	stateMu sync.RWMutex
	state   map[string]any

	mu          sync.RWMutex
	mutations   map[string]MutationHandler
	modules     map[string]Module
	subscribers map[int]Subscriber
	order       []int
	nextID      int
}

// New builds a store holding state with the given root mutation handlers.
// The state map is owned by the store from here on.
func New(state map[string]any, mutations map[string]MutationHandler) *Store {
	if state == nil {
		state = map[string]any{}
	}
	s := &Store{
		state:       state,
		mutations:   make(map[string]MutationHandler, len(mutations)),
		modules:     map[string]Module{},
		subscribers: map[int]Subscriber{},
	}
	for name, handler := range mutations {
		if handler != nil {
			s.mutations[name] = handler
		}
	}
	return s
}

// State returns the live state tree. Callers must treat it as read-only.
func (s *Store) State() map[string]any {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// ReplaceState swaps the whole state tree atomically.
func (s *Store) ReplaceState(state map[string]any) {
	if state == nil {
		state = map[string]any{}
	}
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Subscribe registers fn as a post-commit observer and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			for i, existing := range s.order {
				if existing == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// RegisterModule makes the module's mutation types committable.
func (s *Store) RegisterModule(name string, module Module) error {
	if name == "" {
		return fmt.Errorf("store: module name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.modules[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}
	for mutationType := range module.Mutations {
		if _, exists := s.mutations[mutationType]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateMutation, mutationType)
		}
	}
	for mutationType, handler := range module.Mutations {
		if handler == nil {
			handler = func(map[string]any, any) {}
		}
		s.mutations[mutationType] = handler
	}
	s.modules[name] = module
	return nil
}

// Commit runs the handler for mutationType against the live state and then
// notifies subscribers in registration order.
func (s *Store) Commit(mutationType string, payload any) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.RLock()
	handler, ok := s.mutations[mutationType]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMutation, mutationType)
	}

	s.stateMu.Lock()
	handler(s.state, payload)
	s.stateMu.Unlock()

	mutation := Mutation{Type: mutationType, Payload: payload}
	for _, subscriber := range s.snapshotSubscribers() {
		subscriber(mutation, s.State())
	}
	return nil
}

func (s *Store) snapshotSubscribers() []Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subscriber, 0, len(s.order))
	for _, id := range s.order {
		if fn, ok := s.subscribers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
