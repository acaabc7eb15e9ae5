package views

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("views: evaluator not configured")

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// MatchWithEvaluator sets the rule engine. The default is expr.
func MatchWithEvaluator(e Evaluator) MatcherOption {
	return func(m *Matcher) {
		m.evaluator = e
	}
}

// MatchWithProgramCache wires a compiled-program cache into the default
// evaluator.
func MatchWithProgramCache(cache ProgramCache) MatcherOption {
	return func(m *Matcher) {
		m.cache = cache
	}
}

// MatchWithFunctionRegistry exposes custom functions to rule expressions.
func MatchWithFunctionRegistry(registry *FunctionRegistry) MatcherOption {
	return func(m *Matcher) {
		if registry == nil {
			return
		}
		m.registry = registry.Clone()
	}
}

// MatchWithLogger attaches an evaluation logger.
func MatchWithLogger(logger EvaluatorLogger) MatcherOption {
	return func(m *Matcher) {
		if logger == nil {
			m.logger = noopEvaluatorLogger{}
			return
		}
		m.logger = logger
	}
}

// Matcher evaluates preset rules and selects the first applicable named
// view for a given context.
type Matcher struct {
	evaluator Evaluator
	cache     ProgramCache
	registry  *FunctionRegistry
	logger    EvaluatorLogger
}

// NewMatcher constructs a Matcher.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{logger: noopEvaluatorLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Evaluate executes expr against ctx using the configured evaluator.
func (m *Matcher) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("views: expression must not be empty")
	}
	evaluator, err := m.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.Form.ViewName(), evalErr)
	m.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		View:     ctx.Form.ViewName(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Match returns a copy of the first view in the collection whose Rule
// evaluates truthy against ctx. Views without a rule are skipped. A rule
// that fails to evaluate aborts the scan with the wrapped error.
func (m *Matcher) Match(collection ViewCollection, ctx RuleContext) (View, bool, error) {
	for _, view := range collection {
		if view.Rule == "" {
			continue
		}
		result, err := m.Evaluate(ctx, view.Rule)
		if err != nil {
			return View{}, false, err
		}
		if truthy(result) {
			return view.Clone(), true, nil
		}
	}
	return View{}, false, nil
}

func (m *Matcher) resolveEvaluator() (Evaluator, error) {
	if m.evaluator != nil {
		return m.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if m.cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(m.cache))
	}
	if m.registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(m.registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	m.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func (m *Matcher) evaluatorLogger() EvaluatorLogger {
	if m.logger != nil {
		return m.logger
	}
	return noopEvaluatorLogger{}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case nil:
		return false
	default:
		return !isFalsy(value)
	}
}

// namedEvaluator lets built-in engines report their name for log events and
// wrapped errors.
type namedEvaluator interface {
	engineName() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEvaluator); ok {
		return named.engineName()
	}
	return "custom"
}
