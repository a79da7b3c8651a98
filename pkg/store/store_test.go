package store

import (
	"errors"
	"testing"
)

func counterStore() *Store {
	return New(map[string]any{"count": 0}, map[string]MutationHandler{
		"increment": func(state map[string]any, _ any) {
			state["count"] = state["count"].(int) + 1
		},
	})
}

func TestCommitRunsHandlerThenSubscribers(t *testing.T) {
	s := counterStore()

	var seen []Mutation
	var counts []int
	s.Subscribe(func(m Mutation, state map[string]any) {
		seen = append(seen, m)
		counts = append(counts, state["count"].(int))
	})

	for i := 0; i < 3; i++ {
		if err := s.Commit("increment", i); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	if len(seen) != 3 {
		t.Fatalf("expected three notifications, got %d", len(seen))
	}
	for i, m := range seen {
		if m.Type != "increment" || m.Payload != i {
			t.Fatalf("unexpected mutation %d: %+v", i, m)
		}
		if counts[i] != i+1 {
			t.Fatalf("expected subscriber to see post-commit state %d, got %d", i+1, counts[i])
		}
	}
}

func TestCommitUnknownMutation(t *testing.T) {
	s := counterStore()
	if err := s.Commit("nope", nil); !errors.Is(err, ErrUnknownMutation) {
		t.Fatalf("expected ErrUnknownMutation, got %v", err)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := counterStore()
	calls := 0
	unsubscribe := s.Subscribe(func(Mutation, map[string]any) { calls++ })

	_ = s.Commit("increment", nil)
	unsubscribe()
	unsubscribe()
	_ = s.Commit("increment", nil)

	if calls != 1 {
		t.Fatalf("expected one call before unsubscribe, got %d", calls)
	}
}

func TestRegisterModuleMakesTypesCommittable(t *testing.T) {
	s := counterStore()
	if err := s.RegisterModule("reset", Module{Mutations: map[string]MutationHandler{"RESET": nil}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Commit("RESET", nil); err != nil {
		t.Fatalf("expected registered nil handler to be a no-op, got %v", err)
	}
	if err := s.RegisterModule("reset", Module{}); !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("expected ErrDuplicateModule, got %v", err)
	}
	if err := s.RegisterModule("other", Module{Mutations: map[string]MutationHandler{"increment": nil}}); !errors.Is(err, ErrDuplicateMutation) {
		t.Fatalf("expected ErrDuplicateMutation, got %v", err)
	}
}

func TestSubscriberMayReplaceState(t *testing.T) {
	s := counterStore()
	s.Subscribe(func(_ Mutation, state map[string]any) {
		s.ReplaceState(map[string]any{"count": 100, "replaced": true})
	})
	if err := s.Commit("increment", nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if s.State()["replaced"] != true {
		t.Fatalf("expected replaced state, got %v", s.State())
	}
}
