package persist

import (
	"time"

	"github.com/google/uuid"
)

// WithEvaluator sets the evaluator used to compile Config.FilterExpression.
// When unset the engine named by Config.FilterEngine is used.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *pluginConfig) {
		cfg.evaluator = e
	}
}

// WithLogger routes plugin log events to logger.
func WithLogger(logger Logger) Option {
	return func(cfg *pluginConfig) {
		cfg.logger = logger
	}
}

// WithIDGenerator replaces the snapshot id generator. Defaults to uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(cfg *pluginConfig) {
		cfg.newID = fn
	}
}

// WithClock replaces the time source used for log durations and events.
func WithClock(now func() time.Time) Option {
	return func(cfg *pluginConfig) {
		cfg.now = now
	}
}

func (cfg pluginConfig) idGenerator() func() string {
	if cfg.newID != nil {
		return cfg.newID
	}
	return uuid.NewString
}

func (cfg pluginConfig) clock() func() time.Time {
	if cfg.now != nil {
		return cfg.now
	}
	return time.Now
}
