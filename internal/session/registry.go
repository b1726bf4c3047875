package session

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyActive   = errors.New("activity already running")
	ErrNoActiveSession = errors.New("no active session")
)

// Registry tracks the currently running activity per user, by its start
// time only. Sessions live in memory and do not survive a restart. The
// mutex is required because reminder callbacks read the registry from the
// cron goroutine while the update loop mutates it.
type Registry struct {
	mu     sync.Mutex
	active map[int64]time.Time
}

func NewRegistry() *Registry {
	return &Registry{active: make(map[int64]time.Time)}
}

// Start records now as the session start. At most one session per user.
func (r *Registry) Start(userID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[userID]; ok {
		return ErrAlreadyActive
	}
	r.active[userID] = now
	return nil
}

// Stop removes the session and returns its start time. The session ceases
// to exist once stopped.
func (r *Registry) Stop(userID int64) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.active[userID]
	if !ok {
		return time.Time{}, ErrNoActiveSession
	}
	delete(r.active, userID)
	return start, nil
}

// Peek reports the session start time without side effects.
func (r *Registry) Peek(userID int64) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, ok := r.active[userID]
	return start, ok
}
