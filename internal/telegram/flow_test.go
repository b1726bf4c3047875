package telegram

import (
	"context"
	"strings"
	"testing"
	"time"
)

// Full stop flow: start at T, stop at T+125s, pick a category, type a name.
func TestStopCategorizeNameFlow(t *testing.T) {
	b, fs, fl := newTestBot(t, 42)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	b.handleStartActivity(42, 5, 42, start)
	b.handleStopActivity(42, 5, 42, start.Add(125*time.Second))

	if b.reminders.Active(42) {
		t.Fatalf("reminder job must be cancelled on stop")
	}
	if _, ok := b.sessions.Peek(42); ok {
		t.Fatalf("session must be gone after stop")
	}

	b.handleCallback(ctx, callback(42, 42, catPrefix+"📚 Учёба"))
	b.handleText(ctx, textMessage(42, 42, "Чтение"))

	if len(fl.appended) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(fl.appended))
	}
	row := fl.appended[0]
	if row.name != "Чтение" || row.category != "📚 Учёба" {
		t.Fatalf("wrong row: %+v", row)
	}
	if row.duration != "2:05" {
		t.Fatalf("duration = %q, want 2:05", row.duration)
	}
	if !row.start.Equal(start) || !row.end.Equal(start.Add(125*time.Second)) {
		t.Fatalf("interval lost: %+v", row)
	}

	if best, _ := b.records.Get(42); best != 125 {
		t.Fatalf("personal best = %d, want 125", best)
	}
	final := fs.sent[len(fs.sent)-1]
	if !strings.Contains(final, "Это новый рекорд") {
		t.Fatalf("expected new-record message, got %q", final)
	}
	if !strings.Contains(final, "Длительность: 2:05") {
		t.Fatalf("expected formatted duration, got %q", final)
	}
}

func TestImmediateStopYieldsZeroDuration(t *testing.T) {
	b, _, fl := newTestBot(t, 42)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	b.handleStartActivity(42, 5, 42, now)
	b.handleStopActivity(42, 5, 42, now)
	b.handleCallback(ctx, callback(42, 42, catPrefix+"🔧 Другое"))
	b.handleText(ctx, textMessage(42, 42, "Мгновение"))

	if len(fl.appended) != 1 || fl.appended[0].duration != "0:00" {
		t.Fatalf("expected 0:00 duration, got %+v", fl.appended)
	}
}

func TestEqualDurationIsNotANewRecord(t *testing.T) {
	b, fs, _ := newTestBot(t, 42)
	ctx := context.Background()
	if err := b.records.Put(42, 125); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b.handleStartActivity(42, 5, 42, start)
	b.handleStopActivity(42, 5, 42, start.Add(125*time.Second))
	b.handleCallback(ctx, callback(42, 42, catPrefix+"💼 Работа"))
	b.handleText(ctx, textMessage(42, 42, "Ничья"))

	if best, _ := b.records.Get(42); best != 125 {
		t.Fatalf("tie must not change the record, got %d", best)
	}
	final := fs.sent[len(fs.sent)-1]
	if strings.Contains(final, "Это новый рекорд") {
		t.Fatalf("tie must not announce a new record: %q", final)
	}
	if !strings.Contains(final, "Личный рекорд: 125 сек") {
		t.Fatalf("expected current-best message, got %q", final)
	}
}

func TestCustomIntervalValidation(t *testing.T) {
	b, fs, _ := newTestBot(t, 42)
	ctx := context.Background()

	b.handleCallback(ctx, callback(42, 42, cbSetCustomInterval))
	if !b.conv.AwaitingInterval(42) {
		t.Fatalf("expected custom-interval mode")
	}

	b.handleText(ctx, textMessage(42, 42, "abc"))
	if fs.sent[len(fs.sent)-1] != intervalNotNumberMsg {
		t.Fatalf("expected non-numeric message, got %q", fs.sent[len(fs.sent)-1])
	}
	b.handleText(ctx, textMessage(42, 42, "0"))
	if fs.sent[len(fs.sent)-1] != intervalRangeMsg {
		t.Fatalf("expected range message, got %q", fs.sent[len(fs.sent)-1])
	}
	b.handleText(ctx, textMessage(42, 42, "181"))
	if fs.sent[len(fs.sent)-1] != intervalRangeMsg {
		t.Fatalf("expected range message, got %q", fs.sent[len(fs.sent)-1])
	}

	// Failed attempts leave the mode and the stored interval untouched.
	if !b.conv.AwaitingInterval(42) {
		t.Fatalf("validation failure must keep interval mode")
	}
	if _, ok := b.intervals.Get(42); ok {
		t.Fatalf("failed validation must not persist an interval")
	}

	b.handleText(ctx, textMessage(42, 42, "45"))
	if b.conv.AwaitingInterval(42) {
		t.Fatalf("accepted value must leave interval mode")
	}
	if v, _ := b.intervals.Get(42); v != 45 {
		t.Fatalf("interval = %d, want 45", v)
	}
	if !b.reminders.Active(42) {
		t.Fatalf("accepted interval must schedule the reminder job")
	}
	if !strings.Contains(fs.sent[len(fs.sent)-1], "каждые 45 минут") {
		t.Fatalf("expected confirmation, got %q", fs.sent[len(fs.sent)-1])
	}
}

func TestPresetIntervalReplacesReminder(t *testing.T) {
	b, fs, _ := newTestBot(t, 42)
	ctx := context.Background()

	b.handleStartActivity(42, 5, 42, time.Now())
	b.handleCallback(ctx, callback(42, 42, setIntervalPrefix+"15"))

	if v, _ := b.intervals.Get(42); v != 15 {
		t.Fatalf("interval = %d, want 15", v)
	}
	if !b.reminders.Active(42) {
		t.Fatalf("reminder job missing after preset change")
	}
	if !strings.Contains(fs.edits[len(fs.edits)-1], "каждые 15 минут") {
		t.Fatalf("expected confirmation, got %q", fs.edits[len(fs.edits)-1])
	}
}
