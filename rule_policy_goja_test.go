//go:build js_eval

package powermenu_test

import (
	"errors"
	"testing"

	powermenu "github.com/goliatone/go-powermenu"
)

func TestJSRulePolicyMatchesDefaultPolicy(t *testing.T) {
	policy, err := powermenu.NewRulePolicy(powermenu.EngineJS, "!(locked && secure && power_menu === 0)")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, in := range ruleInputs() {
		want, _ := powermenu.DefaultPolicy.Visible(in)
		got, err := policy.Visible(in)
		if err != nil {
			t.Fatalf("visible %+v: %v", in, err)
		}
		if got != want {
			t.Fatalf("inputs %+v: expected %v, got %v", in, want, got)
		}
	}
}

func TestJSRulePolicyRejectsNonBooleanResult(t *testing.T) {
	policy, err := powermenu.NewRulePolicy(powermenu.EngineJS, "power_menu")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = policy.Visible(powermenu.Inputs{Preference: 1, Component: "test"})
	var evalErr *powermenu.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected evaluation error, got %v", err)
	}
	if evalErr.Engine != powermenu.EngineJS || evalErr.Inputs.Component != "test" || evalErr.Phase != powermenu.PhaseEvaluate {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
}

func TestJSRulePolicySyntaxError(t *testing.T) {
	if _, err := powermenu.NewRulePolicy(powermenu.EngineJS, "unlocked &&"); err == nil {
		t.Fatalf("expected syntax error")
	}
}
