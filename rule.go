package views

import "time"

// RuleContext carries the inputs a preset rule is evaluated against: the
// current form value snapshot plus caller-supplied arguments and metadata.
type RuleContext struct {
	Form     FormValue
	Args     map[string]any
	Metadata map[string]any
	Now      *time.Time
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

// formBinding splits the form snapshot into the named view-level bindings
// and the flattened property keys evaluators expose directly.
func (ctx RuleContext) formBinding() map[string]any {
	binding := map[string]any{
		"form":   map[string]any(ctx.Form),
		"search": ctx.Form.Search(),
		"page":   ctx.Form.Page(),
		"view":   ctx.Form.ViewName(),
	}
	for key, value := range ctx.Form {
		if isReservedKey(key) {
			continue
		}
		binding[key] = value
	}
	return binding
}

// Evaluator executes rule expressions against a rule context.
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
