package repositories

import (
	"chat-sync/docstore"
	"chat-sync/domain/event"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return docstore.NewStore(db, logs.GetLoggerFromLevel(slog.LevelDebug), docstore.WithClock(tickingClock()))
}

// tickingClock advances one second per call so store timestamps are strictly increasing.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func next[T any](t *testing.T, sub *Subscription[T]) event.Batch[T] {
	t.Helper()
	select {
	case batch, ok := <-sub.Changes():
		require.True(t, ok, "subscription closed unexpectedly")
		return batch
	case <-time.After(2 * time.Second):
		require.Fail(t, "no batch received in time")
	}
	return nil
}
