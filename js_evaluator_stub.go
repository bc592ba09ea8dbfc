//go:build !js_eval

package powermenu

import "fmt"

type unavailableEvaluator struct{}

// NewJSEvaluator returns an Evaluator whose Compile always fails with
// ErrEngineUnavailable. Build with -tags js_eval for the goja engine.
func NewJSEvaluator() Evaluator {
	return unavailableEvaluator{}
}

func (unavailableEvaluator) Compile(string) (CompiledRule, error) {
	return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, EngineJS)
}

func jsEvaluatorAvailable() bool {
	return false
}
