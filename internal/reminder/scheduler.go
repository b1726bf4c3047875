package reminder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Notifier is invoked on every reminder fire for the given user.
type Notifier func(userID int64)

// Scheduler keeps at most one recurring reminder job per user on a shared
// cron runner. The entry table makes "replace existing timer" an explicit
// remove-then-add; jobs never stack. Running timers are not persisted: after
// a restart nothing fires until the user starts a session or touches the
// reminder settings again.
type Scheduler struct {
	cron   *cron.Cron
	notify Notifier

	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

func New(notify Notifier) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		notify:  notify,
		entries: make(map[int64]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("📅 Reminder scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("📅 Reminder scheduler stopped")
}

// Schedule replaces the user's reminder job with a new one firing first
// after minutes and then every minutes.
func (s *Scheduler) Schedule(userID int64, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[userID]; ok {
		s.cron.Remove(id)
		delete(s.entries, userID)
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), func() {
		s.notify(userID)
	})
	if err != nil {
		return fmt.Errorf("add reminder job: %w", err)
	}
	s.entries[userID] = id
	return nil
}

// Cancel removes the user's reminder job; no-op when absent.
func (s *Scheduler) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[userID]; ok {
		s.cron.Remove(id)
		delete(s.entries, userID)
	}
}

// Active reports whether the user currently has a reminder job.
func (s *Scheduler) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[userID]
	return ok
}
