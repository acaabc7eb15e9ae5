package views

import (
	"errors"
	"sync"
	"testing"
)

type memoryProgramCache struct {
	mu    sync.Mutex
	store map[string]any
	hits  int
}

func newMemoryProgramCache() *memoryProgramCache {
	return &memoryProgramCache{store: map[string]any{}}
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.store[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

func TestEvaluatorsSeeFormBindings(t *testing.T) {
	form := FormValue{
		KeyView:   "open",
		KeySearch: "invoice",
		KeyPage:   2,
		"status":  "open",
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator unavailable in this build", factory.name)
			}
			cases := []struct {
				expr string
				want any
			}{
				{expr: `status == "open"`, want: true},
				{expr: `search == "invoice"`, want: true},
				{expr: `view == "open"`, want: true},
			}
			for _, tc := range cases {
				got, err := evaluator.Evaluate(RuleContext{Form: form}, tc.expr)
				if err != nil {
					t.Fatalf("evaluate %q: %v", tc.expr, err)
				}
				if got != tc.want {
					t.Fatalf("evaluate %q: want %v got %v", tc.expr, tc.want, got)
				}
			}
		})
	}
}

func TestEvaluatorsCallRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("shout", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("shout expects one argument")
		}
		s, _ := args[0].(string)
		return s + "!", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, registry)
			if evaluator == nil {
				t.Skipf("%s evaluator unavailable in this build", factory.name)
			}
			got, err := evaluator.Evaluate(RuleContext{Form: FormValue{}}, `call("shout", "hi")`)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != "hi!" {
				t.Fatalf("want hi! got %v", got)
			}
		})
	}
}

func TestCompiledRulesUseProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := newMemoryProgramCache()
			evaluator := factory.new(cache, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator unavailable in this build", factory.name)
			}
			rule, err := evaluator.Compile(`page > 1`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			for i := 0; i < 3; i++ {
				got, err := rule.Evaluate(RuleContext{Form: FormValue{KeyPage: 4}})
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				if got != true {
					t.Fatalf("want true got %v", got)
				}
			}
			if len(cache.store) == 0 {
				t.Fatalf("expected compiled program cached")
			}
		})
	}
}

func TestMatcherSelectsFirstApplicablePreset(t *testing.T) {
	collection := ViewCollection{
		{Name: "deep", Rule: `page > 10`},
		{Name: "searching", Rule: `search != ""`},
		{Name: "fallback"},
	}

	matcher := NewMatcher()
	got, ok, err := matcher.Match(collection, RuleContext{Form: FormValue{KeySearch: "x", KeyPage: 2}})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !ok || got.Name != "searching" {
		t.Fatalf("expected searching preset, got %#v ok=%v", got, ok)
	}

	_, ok, err = matcher.Match(collection, RuleContext{Form: FormValue{KeySearch: "", KeyPage: 1}})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if ok {
		t.Fatalf("expected no match when no rule is truthy")
	}
}

func TestMatcherLogsEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	matcher := NewMatcher(MatchWithLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))

	if _, err := matcher.Evaluate(RuleContext{Form: FormValue{KeyView: "open"}}, `1 == 1`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	if events[0].Engine != "expr" || events[0].View != "open" {
		t.Fatalf("unexpected log event: %#v", events[0])
	}
	if events[0].Err != nil {
		t.Fatalf("expected nil error in log event, got %v", events[0].Err)
	}
}

type staticEvaluator struct{ value any }

func (e staticEvaluator) Evaluate(RuleContext, string) (any, error) { return e.value, nil }
func (e staticEvaluator) Compile(string, ...CompileOption) (CompiledRule, error) {
	return nil, errors.New("not compilable")
}

func TestEvaluatorsReportEngineNames(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator unavailable in this build", factory.name)
			}
			if got := evaluatorEngineName(evaluator); got != factory.name {
				t.Fatalf("want engine %q, got %q", factory.name, got)
			}
		})
	}
	if got := evaluatorEngineName(staticEvaluator{value: true}); got != "custom" {
		t.Fatalf("want custom for external evaluators, got %q", got)
	}
	if got := evaluatorEngineName(nil); got != "unknown" {
		t.Fatalf("want unknown for nil evaluator, got %q", got)
	}
}

func TestEvaluateWrapsErrors(t *testing.T) {
	matcher := NewMatcher()
	_, err := matcher.Evaluate(RuleContext{Form: FormValue{KeyView: "open"}}, `1 +`)
	if err == nil {
		t.Fatalf("expected compile error")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T: %v", err, err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine recorded, got %q", evalErr.Engine)
	}
}

func TestFunctionRegistryGuards(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected empty-name rejection")
	}
	if err := registry.Register("f", nil); err == nil {
		t.Fatalf("expected nil-function rejection")
	}
	if err := registry.Register("f", func(...any) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("F", func(...any) (any, error) { return 2, nil }); err == nil {
		t.Fatalf("expected case-insensitive duplicate rejection")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected missing-function error")
	}
}
