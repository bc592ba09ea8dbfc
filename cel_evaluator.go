package powermenu

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

type celEvaluator struct{}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator() Evaluator {
	return &celEvaluator{}
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	env, err := celgo.NewEnv(
		celgo.Variable("unlocked", celgo.BoolType),
		celgo.Variable("locked", celgo.BoolType),
		celgo.Variable("secure", celgo.BoolType),
		celgo.Variable("power_menu", celgo.IntType),
		celgo.Variable("power_menu_disabled", celgo.BoolType),
		celgo.Variable("component", celgo.StringType),
	)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, fmt.Errorf("rule must produce bool, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{program: prg}, nil
}

type celCompiledRule struct {
	program celgo.Program
}

// Evaluate runs the program; cel programs are safe for concurrent use.
func (r *celCompiledRule) Evaluate(in Inputs) (any, error) {
	out, _, err := r.program.Eval(in.bindings())
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
