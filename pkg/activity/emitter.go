package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "persist"

// Config controls what an Emitter stamps on and lets through to its hooks.
type Config struct {
	// Channel defaults to DefaultChannel.
	Channel string
	// Actor is recorded on events that carry no identity of their own.
	Actor Actor
	// Verbs restricts emission to the listed verbs. Empty emits every verb.
	Verbs []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Emitter stamps plugin wide defaults on events and forwards them to hooks.
// The zero value and a nil *Emitter emit nothing.
type Emitter struct {
	hooks   Hooks
	channel string
	actor   Actor
	verbs   map[string]struct{}
	now     func() time.Time
}

// NewEmitter returns an emitter for hooks. Nil hooks are dropped.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		hooks:   hooks.Compact(),
		channel: strings.TrimSpace(cfg.Channel),
		actor:   cfg.Actor,
		now:     cfg.Now,
	}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	if e.now == nil {
		e.now = time.Now
	}
	if len(cfg.Verbs) > 0 {
		e.verbs = make(map[string]struct{}, len(cfg.Verbs))
		for _, verb := range cfg.Verbs {
			e.verbs[strings.TrimSpace(verb)] = struct{}{}
		}
	}
	return e
}

// Enabled reports whether any hook would be notified.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Wants reports whether events with verb are emitted.
func (e *Emitter) Wants(verb string) bool {
	if !e.Enabled() {
		return false
	}
	if e.verbs == nil {
		return true
	}
	_, ok := e.verbs[verb]
	return ok
}

// Emit fills the channel, actor and timestamp when event leaves them empty
// and notifies the hooks. Verbs outside Config.Verbs are dropped silently.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Wants(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if event.Actor == (Actor{}) {
		event.Actor = e.actor
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.hooks.Notify(ctx, event)
}

// Hooks returns a copy of the hooks the emitter notifies.
func (e *Emitter) Hooks() Hooks {
	if e == nil || len(e.hooks) == 0 {
		return nil
	}
	return append(Hooks(nil), e.hooks...)
}
