package attrjson

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("attrjson: evaluator not configured")

// EvalContext carries inputs for one computed-default evaluation.
type EvalContext struct {
	// RecordType is the declaring record type's name, exposed to expressions
	// as record.type.
	RecordType string

	// Attribute names the attribute whose default is being resolved.
	Attribute string

	// Now is the evaluation instant. A nil Now is filled from the clock.
	Now *time.Time

	// Attrs holds the cast values materialized so far, in registry order, so
	// later defaults can reference earlier attributes.
	Attrs map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) withDefaultAttrs() EvalContext {
	if ctx.Attrs == nil {
		ctx.Attrs = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) attributeLabel() string {
	if ctx.Attribute != "" {
		return ctx.Attribute
	}
	return "unknown"
}

func (ctx EvalContext) recordBinding() map[string]any {
	return map[string]any{"type": ctx.RecordType}
}

// Evaluator executes computed-default expressions against an eval context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
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

// resolveEvaluator returns the configured engine, lazily constructing the
// default expr engine wired with the type's program cache and functions.
func (rt *RecordType) resolveEvaluator() (Evaluator, error) {
	rt.evalOnce.Do(func() {
		if rt.cfg.evaluator != nil {
			return
		}
		var exprOpts []ExprEvaluatorOption
		if cache := rt.cfg.programCache; cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cache))
		}
		if registry := rt.cfg.functions; registry != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
		}
		rt.cfg.evaluator = NewExprEvaluator(exprOpts...)
	})
	if rt.cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return rt.cfg.evaluator, nil
}

// evaluateExpression runs expr for the attribute named by ctx, reporting
// duration and outcome to the evaluator logger.
func (rt *RecordType) evaluateExpression(ctx EvalContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("attrjson: expression must not be empty")
	}
	evaluator, err := rt.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	ctx = ctx.withDefaultNow().withDefaultAttrs()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.attributeLabel(), evalErr)
	rt.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:    engine,
		Expr:      expr,
		Attribute: ctx.attributeLabel(),
		Duration:  duration,
		Err:       evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*attrjson.exprEvaluator":
		return "expr"
	case "*attrjson.celEvaluator":
		return "cel"
	case "*attrjson.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
