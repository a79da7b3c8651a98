package persist

// engineConfig is what every filter engine shares: the compiled program cache
// and the helper functions expressions may call.
type engineConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

func (c *engineConfig) cachedProgram(engine, expression string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(cacheKey(engine, expression))
}

func (c *engineConfig) rememberProgram(engine, expression string, program any) {
	if c.cache != nil {
		c.cache.Set(cacheKey(engine, expression), program)
	}
}

// functions returns the registered helpers keyed by the name expressions use.
func (c *engineConfig) functions() map[string]Function {
	return c.registry.bindings()
}

// call backs the call(name, args...) helper.
func (c *engineConfig) call(name string, args ...any) (any, error) {
	return c.registry.Call(name, args...)
}

func (c *engineConfig) useRegistry(registry *FunctionRegistry) {
	if registry != nil {
		c.registry = registry.Clone()
	}
}

func cacheKey(engine, expression string) string {
	return engine + ":" + expression
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*engineConfig)

// JSWithProgramCache shares cache with the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes a copy of registry to JS filters.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.useRegistry(registry)
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
