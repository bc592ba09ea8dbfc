package powermenu

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator compiles rules with github.com/expr-lang/expr.
type exprEvaluator struct{}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator() Evaluator {
	return &exprEvaluator{}
}

// Compile type-checks expression against the rule bindings and requires a
// boolean result.
func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(Inputs{}.bindings()),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, err
	}
	return &exprCompiledRule{program: program}, nil
}

type exprCompiledRule struct {
	program *exprvm.Program
}

func (r *exprCompiledRule) Evaluate(in Inputs) (any, error) {
	result, err := exprlang.Run(r.program, in.bindings())
	if err != nil {
		return nil, err
	}
	return result, nil
}
