package conversation

import (
	"errors"
	"testing"
	"time"
)

func TestStopFlowTransitions(t *testing.T) {
	tr := NewTracker()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(125 * time.Second)

	if tr.State(1) != Idle {
		t.Fatalf("fresh user should be Idle")
	}

	tr.BeginStop(1, start, end)
	if tr.State(1) != AwaitingCategory {
		t.Fatalf("expected AwaitingCategory, got %v", tr.State(1))
	}

	if err := tr.ChooseCategory(1, "📚 Учёба"); err != nil {
		t.Fatalf("choose category: %v", err)
	}
	if tr.State(1) != AwaitingActivityName {
		t.Fatalf("expected AwaitingActivityName, got %v", tr.State(1))
	}

	p, ok := tr.FinishNaming(1)
	if !ok {
		t.Fatalf("finish naming should succeed")
	}
	if p.Category != "📚 Учёба" || !p.Start.Equal(start) || !p.End.Equal(end) {
		t.Fatalf("payload lost: %+v", p)
	}
	if tr.State(1) != Idle {
		t.Fatalf("expected Idle after completion, got %v", tr.State(1))
	}

	// Payload must be cleared.
	if _, ok := tr.FinishNaming(1); ok {
		t.Fatalf("second finish must fail")
	}
}

func TestCategoryPressOutsideFlow(t *testing.T) {
	tr := NewTracker()
	if err := tr.ChooseCategory(1, "💼 Работа"); !errors.Is(err, ErrUnexpectedState) {
		t.Fatalf("expected ErrUnexpectedState, got %v", err)
	}
	if tr.State(1) != Idle {
		t.Fatalf("rejected press must not transition, got %v", tr.State(1))
	}
}

func TestIntervalModeRetryOnFailure(t *testing.T) {
	tr := NewTracker()
	tr.AwaitInterval(1)
	if !tr.AwaitingInterval(1) {
		t.Fatalf("expected interval mode")
	}
	// Validation failure keeps the state; only ClearInterval leaves it.
	if !tr.AwaitingInterval(1) {
		t.Fatalf("state must survive a failed parse")
	}
	tr.ClearInterval(1)
	if tr.AwaitingInterval(1) {
		t.Fatalf("expected Idle after clear")
	}
}

func TestGoalFlagIsOrthogonal(t *testing.T) {
	tr := NewTracker()
	start := time.Now()
	tr.BeginStop(1, start, start.Add(time.Minute))
	tr.SetAwaitingGoal(1, true)

	if !tr.AwaitingGoal(1) {
		t.Fatalf("goal flag not set")
	}
	if tr.State(1) != AwaitingCategory {
		t.Fatalf("goal flag must not disturb the main state, got %v", tr.State(1))
	}

	tr.SetAwaitingGoal(1, false)
	if tr.AwaitingGoal(1) {
		t.Fatalf("goal flag not cleared")
	}
	if tr.State(1) != AwaitingCategory {
		t.Fatalf("main flow lost after goal handling")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.AwaitInterval(1)
	if tr.AwaitingInterval(2) {
		t.Fatalf("state leaked between users")
	}
	if tr.State(2) != Idle {
		t.Fatalf("user 2 should be Idle")
	}
}
