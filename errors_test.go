package powermenu

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluationErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	compile := compileError(EngineCEL, "locked", cause)
	if !strings.Contains(compile.Error(), `cel rule "locked" does not compile: boom`) {
		t.Fatalf("unexpected compile message: %q", compile.Error())
	}

	in := Inputs{State: LockState{SecureMethod: true}, Preference: 0, Component: "lockscreen"}
	eval := evaluationError(EngineExpr, "unlocked", in, cause)
	msg := eval.Error()
	for _, want := range []string{`expr rule "unlocked"`, `component "lockscreen"`, "unlocked=false secure=true power_menu=0", "boom"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}

	var evalErr *EvaluationError
	if !errors.As(eval, &evalErr) || evalErr.Phase != PhaseEvaluate || evalErr.Inputs != in {
		t.Fatalf("expected evaluation phase with inputs, got %+v", evalErr)
	}
	if !errors.Is(eval, cause) {
		t.Fatalf("expected cause to unwrap")
	}
}

func TestReadFaultKeepsExistingFault(t *testing.T) {
	first := readFault("policy", errors.New("boom"))
	if again := readFault("preference", first); again != first {
		t.Fatalf("expected fault to pass through unchanged")
	}
	if readFault("policy", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if !errors.Is(first, ErrReadFault) {
		t.Fatalf("expected ErrReadFault match")
	}
}

func TestStreamStateString(t *testing.T) {
	if StateAttached.String() != "attached" || StateUnattached.String() != "unattached" {
		t.Fatalf("unexpected state names")
	}
}

func TestOfferAfterCloseReportsDeliveryFailure(t *testing.T) {
	var events []LogEvent
	stream := newStream(applyOptions([]Option{WithLogger(LoggerFunc(func(e LogEvent) {
		events = append(events, e)
	}))}))
	stream.Close()
	stream.offer(true)

	if len(events) != 1 || events[0].Kind != LogDeliveryFailed {
		t.Fatalf("expected one delivery failure, got %+v", events)
	}
	if !errors.Is(events[0].Err, ErrStreamClosed) || !events[0].Visible {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}
