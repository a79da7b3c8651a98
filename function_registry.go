package persist

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from filter expressions.
type Function func(args ...any) (any, error)

var functionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedFunctionNames shadow filter bindings or the call helper.
var reservedFunctionNames = map[string]struct{}{
	"mutationtype": {},
	"payload":      {},
	"state":        {},
	"mutation":     {},
	"now":          {},
	"args":         {},
	"metadata":     {},
	"call":         {},
}

type registeredFunction struct {
	name string
	fn   Function
}

// FunctionRegistry holds the helpers filter expressions may call. Functions
// are bound under the name they were registered with; call(name, ...) also
// resolves names regardless of case.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]registeredFunction
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]registeredFunction)}
}

// Register binds fn under name. Names must be identifiers, must not shadow a
// filter binding and must not differ only in case from a registered name.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case fn == nil:
		return fmt.Errorf("persist: function %q is nil", name)
	case !functionName.MatchString(name):
		return fmt.Errorf("persist: function name %q is not an identifier", name)
	}
	key := strings.ToLower(name)
	if _, reserved := reservedFunctionNames[key]; reserved {
		return fmt.Errorf("persist: function name %q is reserved for filter bindings", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]registeredFunction)
	}
	if existing, ok := r.functions[key]; ok {
		return fmt.Errorf("persist: function %q conflicts with registered %q", name, existing.name)
	}
	r.functions[key] = registeredFunction{name: name, fn: fn}
	return nil
}

// Clone returns a registry holding the same functions. Later registrations on
// either side are not shared.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]registeredFunction, len(r.functions))}
	for key, entry := range r.functions {
		clone.functions[key] = entry
	}
	return clone
}

// Call runs the function registered as name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("persist: no functions registered")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("persist: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names returns the registered names, as given to Register, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for _, entry := range r.functions {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// bindings returns every function keyed by its registered name.
func (r *FunctionRegistry) bindings() map[string]Function {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Function, len(r.functions))
	for _, entry := range r.functions {
		out[entry.name] = entry.fn
	}
	return out
}

// WithFunctionRegistry makes registry available to filter expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *pluginConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for filter expressions. A name
// Register rejects fails New with ErrInvalidConfig.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *pluginConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.optionErrs = append(cfg.optionErrs, err)
		}
	}
}
