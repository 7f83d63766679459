package spool

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteerhub/auth-service/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func event(action string, ts time.Time) domain.AuditEvent {
	return domain.AuditEvent{
		Action:    action,
		Outcome:   domain.AuditOutcomeSuccess,
		Timestamp: ts,
	}
}

func TestStore_EnqueueAndBatch(t *testing.T) {
	store := openTestStore(t)
	base := time.Now()

	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionRegister, base)}))
	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, base.Add(time.Second))}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	entries, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Keys are timestamp-ordered, oldest first.
	assert.Equal(t, domain.AuditActionRegister, entries[0].Event.Action)
	assert.Equal(t, domain.AuditActionLogin, entries[1].Event.Action)
	assert.NotEmpty(t, entries[0].Event.ID)
}

func TestStore_BatchHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, base.Add(time.Duration(i)*time.Millisecond))}))
	}

	entries, err := store.GetBatch(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStore_RemoveDeletesEntry(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, time.Now())}))

	entries, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, store.Remove(entries[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestStore_RequeueKeepsRetryCount(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, time.Now().Add(-time.Minute))}))

	entries, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	entry.Retries++
	require.NoError(t, store.Remove(entry))
	require.NoError(t, store.Requeue(entry))

	entries, err = store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Retries)
	assert.Equal(t, entry.Event.ID, entries[0].Event.ID)
}

func TestStore_CleanupDropsOldEntries(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, now.Add(-48*time.Hour))}))
	require.NoError(t, store.Enqueue(Entry{Event: event(domain.AuditActionLogin, now)}))

	require.NoError(t, store.Cleanup(now.Add(-24*time.Hour)))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}
