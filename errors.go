package powermenu

import (
	"errors"
	"fmt"
)

var (
	// ErrReadFault matches every *ReadFaultError.
	ErrReadFault = errors.New("powermenu: upstream read fault")
	// ErrStreamClosed is reported when a value is offered to a torn-down stream.
	ErrStreamClosed = errors.New("powermenu: stream closed")
)

// ReadFaultError wraps a failure reading upstream state or evaluating the
// visibility policy. It terminates the stream it occurs on.
type ReadFaultError struct {
	Source string
	Err    error
}

func (e *ReadFaultError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("powermenu: read %s: %v", e.Source, e.Err)
}

func (e *ReadFaultError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrReadFault as a match so callers can test the category without
// knowing the source.
func (e *ReadFaultError) Is(target error) bool {
	return target == ErrReadFault
}

func readFault(source string, err error) error {
	if err == nil {
		return nil
	}
	var fault *ReadFaultError
	if errors.As(err, &fault) {
		return err
	}
	return &ReadFaultError{Source: source, Err: err}
}

// RulePhase tells whether a rule failed while compiling or while evaluating.
type RulePhase string

const (
	PhaseCompile  RulePhase = "compile"
	PhaseEvaluate RulePhase = "evaluate"
)

// EvaluationError reports a visibility rule failure. Inputs is only set for
// PhaseEvaluate and holds the values the rule was run against.
type EvaluationError struct {
	Engine string
	Expr   string
	Phase  RulePhase
	Inputs Inputs
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Phase == PhaseEvaluate {
		return fmt.Sprintf("powermenu: %s rule %q failed for component %q (unlocked=%t secure=%t power_menu=%d): %v",
			e.Engine, e.Expr, e.Inputs.Component, e.Inputs.State.Unlocked, e.Inputs.State.SecureMethod, e.Inputs.Preference, e.Err)
	}
	return fmt.Sprintf("powermenu: %s rule %q does not compile: %v", e.Engine, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func compileError(engine, expr string, err error) error {
	return &EvaluationError{Engine: engine, Expr: expr, Phase: PhaseCompile, Err: err}
}

func evaluationError(engine, expr string, in Inputs, err error) error {
	return &EvaluationError{Engine: engine, Expr: expr, Phase: PhaseEvaluate, Inputs: in, Err: err}
}
