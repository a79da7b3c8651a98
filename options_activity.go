package persist

import (
	"context"

	"github.com/goliatone/go-persist/pkg/activity"
)

// WithActivityHooks attaches hooks notified on restore, persist, remove and
// reset. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	compact := hooks.Compact()
	return func(cfg *pluginConfig) {
		cfg.activityHooks = compact
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *pluginConfig) {
		cfg.activityConfig.Channel = channel
	}
}

// WithActor sets the identity recorded on emitted events.
func WithActor(actor activity.Actor) Option {
	return func(cfg *pluginConfig) {
		cfg.activityConfig.Actor = actor
	}
}

// WithActivityVerbs limits emitted events to verbs, for example only
// activity.VerbStateReset for an audit trail.
func WithActivityVerbs(verbs ...string) Option {
	return func(cfg *pluginConfig) {
		cfg.activityConfig.Verbs = append([]string(nil), verbs...)
	}
}

// ActivityHooks returns a copy of the hooks configured on the plugin.
func (p *Plugin) ActivityHooks() activity.Hooks {
	if p == nil {
		return nil
	}
	return p.emitter.Hooks()
}

func (p *Plugin) newEmitter() *activity.Emitter {
	cfg := p.cfg.activityConfig
	cfg.Now = p.now
	return activity.NewEmitter(p.cfg.activityHooks, cfg)
}

// emit never fails the caller; hook errors are logged.
func (p *Plugin) emit(event activity.Event) {
	if !p.emitter.Wants(event.Verb) {
		return
	}
	if err := p.emitter.Emit(context.Background(), event); err != nil {
		p.logger.Log(LogEvent{
			Op:           OpNotify,
			Group:        event.Group,
			StorageKey:   event.StorageKey,
			MutationType: event.MutationType,
			Err:          err,
		})
	}
}
