package conversation

import (
	"errors"
	"sync"
	"time"
)

// State is the pending multi-step input expected from a user.
type State int

const (
	Idle State = iota
	AwaitingCategory
	AwaitingActivityName
	AwaitingCustomInterval
)

var ErrUnexpectedState = errors.New("unexpected conversation state")

// Pending carries the stop-flow context between steps.
type Pending struct {
	Category string
	Start    time.Time
	End      time.Time
}

// Tracker is a per-user tagged state machine. Exactly one state per user;
// the awaiting-goal flag is orthogonal to the main states and only shadows
// free-text handling, it never cancels an in-flight flow.
type Tracker struct {
	mu           sync.Mutex
	states       map[int64]State
	pending      map[int64]Pending
	awaitingGoal map[int64]bool
}

func NewTracker() *Tracker {
	return &Tracker{
		states:       make(map[int64]State),
		pending:      make(map[int64]Pending),
		awaitingGoal: make(map[int64]bool),
	}
}

func (t *Tracker) State(userID int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[userID]
}

// BeginStop enters the stop flow: the user is now asked for a category,
// with the finished interval carried as payload.
func (t *Tracker) BeginStop(userID int64, start, end time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[userID] = AwaitingCategory
	t.pending[userID] = Pending{Start: start, End: end}
}

// ChooseCategory records the category and moves on to activity naming.
// A category press in any other state is rejected without a transition.
func (t *Tracker) ChooseCategory(userID int64, category string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[userID] != AwaitingCategory {
		return ErrUnexpectedState
	}
	p := t.pending[userID]
	p.Category = category
	t.pending[userID] = p
	t.states[userID] = AwaitingActivityName
	return nil
}

// FinishNaming pops the carried payload and returns the user to Idle.
// It reports false when the user is not awaiting an activity name.
func (t *Tracker) FinishNaming(userID int64) (Pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[userID] != AwaitingActivityName {
		return Pending{}, false
	}
	p := t.pending[userID]
	delete(t.pending, userID)
	t.states[userID] = Idle
	return p, true
}

// AwaitInterval puts the user into custom-interval input mode.
func (t *Tracker) AwaitInterval(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[userID] = AwaitingCustomInterval
}

func (t *Tracker) AwaitingInterval(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[userID] == AwaitingCustomInterval
}

// ClearInterval leaves custom-interval mode after a successful parse.
// Validation failures keep the state so the user may retry.
func (t *Tracker) ClearInterval(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[userID] == AwaitingCustomInterval {
		t.states[userID] = Idle
	}
}

func (t *Tracker) SetAwaitingGoal(userID int64, awaiting bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if awaiting {
		t.awaitingGoal[userID] = true
	} else {
		delete(t.awaitingGoal, userID)
	}
}

func (t *Tracker) AwaitingGoal(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.awaitingGoal[userID]
}
