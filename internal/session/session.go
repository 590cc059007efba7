// Package session tracks each browser's position in the question bank.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session survives without activity.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned by a Store when no live session has the given ID.
var ErrNotFound = errors.New("session not found")

// Session is one learner's cursor into the question bank.
type Session struct {
	ID string `json:"id"`

	// Number is the 0-based index of the current question.
	Number int `json:"number"`

	// Total is the question count seen on the last request.
	Total int `json:"total"`

	LastActivity time.Time `json:"last_activity"`

	// loaded is the cursor as read from the store, nil for a new session.
	loaded *cursor
}

type cursor struct {
	number int
	total  int
}

// Changed reports whether s is new or its cursor moved since it was loaded.
func (s *Session) Changed() bool {
	return s.loaded == nil || s.loaded.number != s.Number || s.loaded.total != s.Total
}

func (s *Session) markLoaded() {
	s.loaded = &cursor{number: s.Number, total: s.Total}
}

// Clamp keeps Number inside [0, total-1] and records total.
func (s *Session) Clamp(total int) {
	s.Total = total
	s.Number = min(s.Number, max(0, total-1))
	s.Number = max(0, s.Number)
}

// Store persists sessions. Entries older than the store's TTL are gone.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error

	// Touch sets LastActivity and extends the TTL without writing the
	// cursor. It returns ErrNotFound when id is not stored.
	Touch(ctx context.Context, id string, at time.Time) error

	Delete(ctx context.Context, id string) error
}

// Manager loads and saves sessions, starting a fresh cursor for new or
// idle learners.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager over store with the given idle TTL.
func NewManager(store Store, ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session for id. A missing, unknown or idle session is
// replaced by a new one at question 0 with a fresh ID. The returned session
// is stamped with the current time but not saved.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	now := m.now()
	if id != "" {
		s, err := m.store.Get(ctx, id)
		switch {
		case err == nil && now.Sub(s.LastActivity) <= m.ttl:
			s.LastActivity = now
			s.markLoaded()
			return s, nil
		case err == nil:
			slog.Info("session expired", "session", id, "idle", now.Sub(s.LastActivity).Round(time.Second))
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	s := &Session{ID: uuid.NewString(), LastActivity: now}
	slog.Debug("session started", "session", s.ID)
	return s, nil
}

// Save persists s.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.markLoaded()
	return nil
}

// Commit writes s back after a request. The cursor is only written when
// the request changed it; otherwise just the activity time is refreshed,
// so a slow request cannot overwrite a cursor moved by a concurrent one.
func (m *Manager) Commit(ctx context.Context, s *Session) error {
	if s.Changed() {
		return m.Save(ctx, s)
	}
	err := m.store.Touch(ctx, s.ID, s.LastActivity)
	if errors.Is(err, ErrNotFound) {
		return m.Save(ctx, s)
	}
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// TTL returns the idle timeout.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
