package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-persist/pkg/store"
)

// Filter engines accepted by Config.FilterEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ErrNoEvaluator reports a filter engine that is not available in this build.
var ErrNoEvaluator = errors.New("persist: evaluator not configured")

// filterVariables lists the names bound for filter expressions. Values are
// placeholders used when an engine needs declarations up front.
var filterVariables = map[string]any{
	"mutationType": "",
	"payload":      nil,
	"state":        map[string]any{},
	"mutation":     map[string]any{},
}

func filterBindings(mutation store.Mutation, state map[string]any) map[string]any {
	return map[string]any{
		"mutationType": mutation.Type,
		"payload":      mutation.Payload,
		"state":        state,
		"mutation": map[string]any{
			"type":    mutation.Type,
			"payload": mutation.Payload,
		},
	}
}

// NewEvaluator returns the evaluator for engine. An empty engine selects expr.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	var evaluator Evaluator
	switch engine {
	case "", EngineExpr:
		evaluator = NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
	case EngineCEL:
		evaluator = NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	case EngineJS:
		evaluator = NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
	default:
		return nil, fmt.Errorf("%w: unknown filter engine %q", ErrInvalidConfig, engine)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrNoEvaluator, engine)
	}
	return evaluator, nil
}

// ExpressionFilter decides persistence with a compiled boolean expression
// over mutationType, payload, state and mutation.
type ExpressionFilter struct {
	engine     string
	expression string
	rule       CompiledRule
	logger     EvaluatorLogger
}

// NewExpressionFilter compiles expression once with evaluator. Compile errors
// are returned as *EvaluationError.
func NewExpressionFilter(evaluator Evaluator, expression string, logger EvaluatorLogger) (*ExpressionFilter, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if expression == "" {
		return nil, fmt.Errorf("persist: filter expression must not be empty")
	}
	engine := evaluatorEngineName(evaluator)
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, "", err)
	}
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}
	return &ExpressionFilter{
		engine:     engine,
		expression: expression,
		rule:       rule,
		logger:     logger,
	}, nil
}

// Match evaluates the expression for mutation. A non boolean result is an
// error.
func (f *ExpressionFilter) Match(mutation store.Mutation, state map[string]any) (bool, error) {
	ctx := RuleContext{
		Snapshot: filterBindings(mutation, state),
		Label:    mutation.Type,
	}.withDefaults()
	start := time.Now()
	value, err := f.rule.Evaluate(ctx)
	duration := time.Since(start)
	matched, isBool := value.(bool)
	if err == nil && !isBool {
		err = fmt.Errorf("expression returned %T, want bool", value)
	}
	err = wrapEvaluationError(f.engine, f.expression, mutation.Type, err)
	f.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   f.engine,
		Expr:     f.expression,
		Label:    ctx.label(),
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return matched, nil
}

// Filter adapts f to a MutationFilter. Evaluation errors count as no match;
// they have already been reported to the evaluator logger.
func (f *ExpressionFilter) Filter() MutationFilter {
	return func(mutation store.Mutation, state map[string]any) bool {
		matched, err := f.Match(mutation, state)
		return err == nil && matched
	}
}

// Expression returns the source expression.
func (f *ExpressionFilter) Expression() string {
	return f.expression
}

// Engine returns the engine name the expression was compiled with.
func (f *ExpressionFilter) Engine() string {
	return f.engine
}

// engineNamer is implemented by evaluators that know their engine name.
type engineNamer interface {
	Engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if named, ok := e.(engineNamer); ok {
		return named.Engine()
	}
	if e == nil {
		return "unknown"
	}
	return "custom"
}

func acceptAll(store.Mutation, map[string]any) bool {
	return true
}
