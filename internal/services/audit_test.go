package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteerhub/auth-service/domain"
	"github.com/volunteerhub/auth-service/internal/infrastructure/spool"
)

type stubTrail struct {
	mu     sync.Mutex
	fail   bool
	events []domain.AuditEvent
}

func (s *stubTrail) Record(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("redis unavailable")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubTrail) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *stubTrail) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type stubHealth struct{ online bool }

func (h *stubHealth) IsOnline() bool { return h.online }

func newTestRecorder(t *testing.T, trail *stubTrail, health ConnectionHealth) *AuditRecorder {
	t.Helper()
	store, err := spool.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewAuditRecorder(trail, store, health, nil, RecorderConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: 2,
	})
}

func loginEvent() domain.AuditEvent {
	return domain.AuditEvent{
		Action:  domain.AuditActionLogin,
		Outcome: domain.AuditOutcomeSuccess,
		UserID:  "user-1",
	}
}

func TestRecorder_DeliversImmediatelyWhenOnline(t *testing.T) {
	trail := &stubTrail{}
	r := newTestRecorder(t, trail, &stubHealth{online: true})

	require.NoError(t, r.Record(context.Background(), loginEvent()))

	assert.Equal(t, 1, trail.count())
	assert.Equal(t, 0, r.Size())
}

func TestRecorder_SpoolsWhenOffline(t *testing.T) {
	trail := &stubTrail{}
	r := newTestRecorder(t, trail, &stubHealth{online: false})

	require.NoError(t, r.Record(context.Background(), loginEvent()))

	assert.Equal(t, 0, trail.count())
	assert.Equal(t, 1, r.Size())
}

func TestRecorder_SpoolsWhenDeliveryFails(t *testing.T) {
	trail := &stubTrail{fail: true}
	r := newTestRecorder(t, trail, &stubHealth{online: true})

	require.NoError(t, r.Record(context.Background(), loginEvent()))

	assert.Equal(t, 1, r.Size())
}

func TestRecorder_DrainDeliversSpooledEvents(t *testing.T) {
	trail := &stubTrail{}
	health := &stubHealth{online: false}
	r := newTestRecorder(t, trail, health)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, loginEvent()))
	require.NoError(t, r.Record(ctx, loginEvent()))
	require.Equal(t, 2, r.Size())

	health.online = true
	require.NoError(t, r.Drain(ctx))

	assert.Equal(t, 2, trail.count())
	assert.Equal(t, 0, r.Size())
}

func TestRecorder_DrainSkipsWhileOffline(t *testing.T) {
	trail := &stubTrail{}
	health := &stubHealth{online: false}
	r := newTestRecorder(t, trail, health)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, loginEvent()))
	require.NoError(t, r.Drain(ctx))

	assert.Equal(t, 0, trail.count())
	assert.Equal(t, 1, r.Size())
}

func TestRecorder_DrainDiscardsStaleSpooledEvents(t *testing.T) {
	trail := &stubTrail{}
	store, err := spool.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	r := NewAuditRecorder(trail, store, &stubHealth{online: false}, nil, RecorderConfig{
		Interval:   time.Minute,
		BatchSize:  10,
		MaxRetries: 2,
		Retention:  24 * time.Hour,
	})

	stale := loginEvent()
	stale.Timestamp = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Enqueue(spool.Entry{Event: stale}))
	require.NoError(t, r.Record(context.Background(), loginEvent()))
	require.Equal(t, 2, r.Size())

	// The backend stays offline, so nothing is delivered. The stale event
	// is still swept while the fresh one waits for the next drain.
	require.NoError(t, r.Drain(context.Background()))

	assert.Equal(t, 0, trail.count())
	assert.Equal(t, 1, r.Size())
}

func TestRecorder_DropsEventAfterMaxRetries(t *testing.T) {
	trail := &stubTrail{}
	health := &stubHealth{online: false}
	r := newTestRecorder(t, trail, health)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, loginEvent()))

	// Backend reports online but every delivery fails; two drains exhaust
	// the retry budget.
	health.online = true
	trail.setFail(true)

	require.NoError(t, r.Drain(ctx))
	assert.Equal(t, 1, r.Size())

	require.NoError(t, r.Drain(ctx))
	assert.Equal(t, 0, r.Size())
}
