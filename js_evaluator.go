//go:build js_eval

package powermenu

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct{}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator() Evaluator {
	return &jsEvaluator{}
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := goja.Compile("visibility_rule", wrapExpression(expression), false)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{program: program}, nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	program *goja.Program
}

// Evaluate runs the program in a fresh runtime; goja runtimes are not safe
// for concurrent use.
func (r *jsCompiledRule) Evaluate(in Inputs) (any, error) {
	vm := goja.New()
	for key, value := range in.bindings() {
		if err := vm.Set(key, value); err != nil {
			return nil, err
		}
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func jsEvaluatorAvailable() bool {
	return true
}
