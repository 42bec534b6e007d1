package attrjson

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError captures engine metadata alongside the originating error
// when a computed default fails.
type EvaluationError struct {
	Engine    string
	Expr      string
	Attribute string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("attrjson: %s evaluator %s attribute=%s: %v", e.Engine, describeExpression(e.Expr), e.Attribute, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "attrjson:") {
		return err
	}
	return fmt.Errorf("attrjson: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, attribute string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Attribute == "" {
			evalErr.Attribute = attribute
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		Attribute: attribute,
		Err:       err,
	}
}
