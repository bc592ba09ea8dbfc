package powermenu

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ErrEngineUnavailable indicates the requested rule engine is unknown or was
// not compiled into this binary.
var ErrEngineUnavailable = errors.New("powermenu: rule engine unavailable")

// Evaluator compiles visibility rule expressions.
type Evaluator interface {
	Compile(expression string) (CompiledRule, error)
}

// CompiledRule is a reusable rule program evaluated once per recomputation.
type CompiledRule interface {
	Evaluate(Inputs) (any, error)
}

// NewEvaluator returns the evaluator registered for engine. An empty engine
// selects expr.
func NewEvaluator(engine string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(), nil
	case EngineCEL:
		return NewCELEvaluator(), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
		return NewJSEvaluator(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, engine)
	}
}

// RulePolicy evaluates a compiled expression against the recomputation
// inputs. Expressions see unlocked, locked, secure, power_menu,
// power_menu_disabled and component, and must produce a bool.
type RulePolicy struct {
	engine     string
	expression string
	rule       CompiledRule
}

// NewRulePolicy compiles expression with the named engine.
func NewRulePolicy(engine, expression string) (*RulePolicy, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("powermenu: rule expression must not be empty")
	}
	evaluator, err := NewEvaluator(engine)
	if err != nil {
		return nil, err
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, compileError(engineName(engine), expression, err)
	}
	return &RulePolicy{
		engine:     engineName(engine),
		expression: expression,
		rule:       rule,
	}, nil
}

// Engine returns the engine name the policy was compiled with.
func (p *RulePolicy) Engine() string {
	return p.engine
}

// Expression returns the compiled source expression.
func (p *RulePolicy) Expression() string {
	return p.expression
}

// Visible implements Policy.
func (p *RulePolicy) Visible(in Inputs) (bool, error) {
	out, err := p.rule.Evaluate(in)
	if err != nil {
		return false, evaluationError(p.engine, p.expression, in, err)
	}
	visible, ok := out.(bool)
	if !ok {
		return false, evaluationError(p.engine, p.expression, in, fmt.Errorf("rule returned %T, want bool", out))
	}
	return visible, nil
}

func engineName(engine string) string {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if engine == "" {
		return EngineExpr
	}
	return engine
}
