package activity

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingVerb is returned by Hooks.Notify for an event without a verb.
var ErrMissingVerb = errors.New("activity: event has no verb")

// Hook receives state lifecycle events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans events out to several hooks. Nil entries are ignored.
type Hooks []Hook

// Compact returns the non-nil hooks, or nil when there are none.
func (h Hooks) Compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

// Notify normalizes event once and hands every hook its own copy. All hooks
// run even when some fail; failures are joined and name the hook position.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	if event.Verb == "" {
		return ErrMissingVerb
	}
	if ctx == nil {
		ctx = context.Background()
	}
	normalized := event.Normalize()

	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized.clone()); err != nil {
			errs = append(errs, fmt.Errorf("activity: hook %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
