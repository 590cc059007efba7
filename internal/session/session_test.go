package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(clock *fakeClock) (*Manager, *MemoryStore) {
	store := NewMemoryStore(DefaultTTL)
	store.now = clock.now
	return NewManager(store, DefaultTTL, WithClock(clock.now)), store
}

func TestManager_NewSessionStartsAtZero(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(clock)

	s, err := m.Load(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.Number)
	assert.Equal(t, clock.t, s.LastActivity)
}

func TestManager_ResumesLiveSession(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(clock)
	ctx := context.Background()

	s, err := m.Load(ctx, "")
	require.NoError(t, err)
	s.Number = 2
	require.NoError(t, m.Save(ctx, s))

	clock.advance(29 * time.Minute)
	again, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
	assert.Equal(t, 2, again.Number)
	assert.Equal(t, clock.t, again.LastActivity)
}

func TestManager_IdleSessionResetsCursor(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(clock)
	ctx := context.Background()

	s, _ := m.Load(ctx, "")
	s.Number = 3
	require.NoError(t, m.Save(ctx, s))

	clock.advance(31 * time.Minute)
	again, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, again.ID)
	assert.Equal(t, 0, again.Number)
}

// staleStore returns whatever was saved regardless of age, so the manager's
// own idle check is what expires the session.
type staleStore struct{ s *Session }

func (f *staleStore) Get(context.Context, string) (*Session, error) {
	if f.s == nil {
		return nil, ErrNotFound
	}
	c := *f.s
	return &c, nil
}

func (f *staleStore) Save(_ context.Context, s *Session) error {
	f.s = s
	return nil
}

func (f *staleStore) Touch(_ context.Context, _ string, at time.Time) error {
	if f.s == nil {
		return ErrNotFound
	}
	f.s.LastActivity = at
	return nil
}

func (f *staleStore) Delete(context.Context, string) error {
	f.s = nil
	return nil
}

func TestManager_ChecksIdleTimeItself(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	store := &staleStore{s: &Session{ID: "old", Number: 4, LastActivity: clock.t}}
	m := NewManager(store, DefaultTTL, WithClock(clock.now))

	clock.advance(time.Hour)
	s, err := m.Load(context.Background(), "old")
	require.NoError(t, err)
	assert.NotEqual(t, "old", s.ID)
	assert.Equal(t, 0, s.Number)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*Session, error) {
	return nil, errors.New("connection reset")
}

func (brokenStore) Save(context.Context, *Session) error { return nil }

func (brokenStore) Touch(context.Context, string, time.Time) error { return nil }

func (brokenStore) Delete(context.Context, string) error { return nil }

func TestManager_StoreErrorIsReturned(t *testing.T) {
	m := NewManager(brokenStore{}, DefaultTTL)
	_, err := m.Load(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestManager_CommitWritesCursorOnlyWhenChanged(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m, store := newTestManager(clock)
	ctx := context.Background()

	s, _ := m.Load(ctx, "")
	assert.True(t, s.Changed(), "a new session must be written")
	require.NoError(t, m.Commit(ctx, s))
	assert.False(t, s.Changed())

	// Two overlapping requests load the same cursor.
	slow, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	fast, err := m.Load(ctx, s.ID)
	require.NoError(t, err)

	fast.Number = 1
	require.NoError(t, m.Commit(ctx, fast))

	clock.advance(time.Minute)
	slow.LastActivity = clock.t
	require.NoError(t, m.Commit(ctx, slow))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Number, "an unchanged session must not write back its cursor")
	assert.Equal(t, clock.t, got.LastActivity)
}

func TestManager_CommitRecreatesVanishedSession(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	m, store := newTestManager(clock)
	ctx := context.Background()

	s, _ := m.Load(ctx, "")
	require.NoError(t, m.Commit(ctx, s))
	s, _ = m.Load(ctx, s.ID)
	require.NoError(t, store.Delete(ctx, s.ID))

	require.NoError(t, m.Commit(ctx, s))
	_, err := store.Get(ctx, s.ID)
	assert.NoError(t, err)
}

func TestMemoryStore_TouchKeepsCursor(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Minute)
	store.now = clock.now
	ctx := context.Background()

	assert.ErrorIs(t, store.Touch(ctx, "missing", clock.t), ErrNotFound)

	require.NoError(t, store.Save(ctx, &Session{ID: "a", Number: 3, Total: 5}))
	clock.advance(50 * time.Second)
	require.NoError(t, store.Touch(ctx, "a", clock.t))

	clock.advance(50 * time.Second)
	got, err := store.Get(ctx, "a")
	require.NoError(t, err, "touch must extend the expiry")
	assert.Equal(t, 3, got.Number)
	assert.Equal(t, clock.t.Add(-50*time.Second), got.LastActivity)
}

func TestSession_Clamp(t *testing.T) {
	tests := []struct {
		name   string
		number int
		total  int
		want   int
	}{
		{"inside", 1, 3, 1},
		{"past end", 5, 3, 2},
		{"empty bank", 2, 0, 0},
		{"negative", -1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Number: tt.number}
			s.Clamp(tt.total)
			assert.Equal(t, tt.want, s.Number)
			assert.Equal(t, tt.total, s.Total)
		})
	}
}

func TestMemoryStore_ExpiresAndPrunes(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Minute)
	store.now = clock.now
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "a", Number: 1}))
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Number)

	got.Number = 9
	again, _ := store.Get(ctx, "a")
	assert.Equal(t, 1, again.Number, "store must hand out copies")

	clock.advance(2 * time.Minute)
	require.NoError(t, store.Save(ctx, &Session{ID: "b"}))
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "b"))
	assert.Equal(t, 0, store.Len())
}

// TestRedisStore runs against a real server when EXAMCOACH_TEST_REDIS_ADDR
// is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("EXAMCOACH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EXAMCOACH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr, "", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := &Session{ID: "test-" + t.Name(), Number: 2, Total: 5, LastActivity: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, store.Save(ctx, s))
	t.Cleanup(func() { store.Delete(ctx, s.ID) })

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Number, got.Number)
	assert.Equal(t, s.Total, got.Total)
	assert.True(t, s.LastActivity.Equal(got.LastActivity))

	later := s.LastActivity.Add(time.Second)
	require.NoError(t, store.Touch(ctx, s.ID, later))
	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Number, got.Number)
	assert.True(t, later.Equal(got.LastActivity))

	require.NoError(t, store.Delete(ctx, s.ID))
	assert.ErrorIs(t, store.Touch(ctx, s.ID, later), ErrNotFound)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
