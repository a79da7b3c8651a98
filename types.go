package persist

import (
	"time"

	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/goliatone/go-persist/pkg/store"
)

const (
	// DefaultStorageKey is the storage key used by groups that do not name one.
	DefaultStorageKey = "__VUEX_PERSIST_PLUGIN__"
	// DefaultResetMutationType is the mutation type that triggers a reset.
	DefaultResetMutationType = "__RESET_STATE__"
	// DefaultGroupName names the implicit group holding bare paths.
	DefaultGroupName = "default"
)

// Store is the host store capability the plugin attaches to.
type Store interface {
	State() map[string]any
	ReplaceState(state map[string]any)
	Subscribe(fn store.Subscriber) func()
	RegisterModule(name string, module store.Module) error
}

// Committer commits mutations. It is used by Reset.
type Committer interface {
	Commit(mutationType string, payload any) error
}

// MutationFilter decides whether a committed mutation triggers a save.
type MutationFilter func(mutation store.Mutation, state map[string]any) bool

// GetStateFunc reads the persisted snapshot stored under key. A nil map with
// a nil error means there is no persisted data.
type GetStateFunc func(key string, backend storage.Storage) (map[string]any, error)

// SetStateFunc writes state under key.
type SetStateFunc func(key string, state map[string]any, backend storage.Storage) error

// RemoveStateFunc deletes the entry stored under key.
type RemoveStateFunc func(key string, backend storage.Storage) error

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Label identifies what is being evaluated in logs and errors, usually
	// the mutation type.
	Label string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) label() string {
	if ctx.Label != "" {
		return ctx.Label
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Plugin.
type Option func(*pluginConfig)

type pluginConfig struct {
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	evaluatorLogger EvaluatorLogger
	logger          Logger
	activityHooks   activity.Hooks
	activityConfig  activity.Config
	newID           func() string
	now             func() time.Time
	optionErrs      []error
}

func applyOptions(opts []Option) pluginConfig {
	cfg := pluginConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg pluginConfig) loggerOrNoop() Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopLogger{}
}

func (cfg pluginConfig) evaluatorLoggerOrNoop() EvaluatorLogger {
	if cfg.evaluatorLogger != nil {
		return cfg.evaluatorLogger
	}
	if logger, ok := cfg.logger.(EvaluatorLogger); ok {
		return logger
	}
	return noopEvaluatorLogger{}
}
