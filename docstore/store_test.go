package docstore

import (
	"chat-sync/errors"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, logs.GetLoggerFromLevel(slog.LevelDebug), opts...)
}

func TestStore_SetGet(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 30, 0, 123000, time.UTC)

	// Given a stored document
	err := store.Set(ctx, "users/alice", map[string]any{
		"username":  "Alice",
		"createdAt": at,
		"tags":      []string{"a", "b"},
	})
	req.NoError(err)

	// When it is read back
	doc, err := store.Get(ctx, "users/alice")

	// Then fields survive the encoding
	req.NoError(err)
	req.Equal("alice", doc.ID)
	req.Equal("Alice", doc.String("username"))
	req.True(at.Equal(doc.Time("createdAt")))
	req.Equal([]string{"a", "b"}, doc.Strings("tags"))
}

func TestStore_GetMissing(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "users/nobody")
	req.ErrorIs(err, errors.ErrDocumentNotFound)
}

func TestStore_CanceledContext(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.ErrorIs(store.Set(ctx, "users/alice", map[string]any{"username": "Alice"}), context.Canceled)
	_, err := store.Add(ctx, "chatrooms/a_b/messages", map[string]any{"body": "hi"})
	req.ErrorIs(err, context.Canceled)
}

func TestStore_Merge(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	// Given a missing document, a merge fails
	err := store.Merge(ctx, "chatrooms/a_b", map[string]any{"lastMessage": "hi"})
	req.ErrorIs(err, errors.ErrDocumentNotFound)

	// Given an existing document
	req.NoError(store.Set(ctx, "chatrooms/a_b", map[string]any{
		"participantIds": []string{"a", "b"},
		"lastMessage":    "",
	}))

	// When a merge overwrites one field
	req.NoError(store.Merge(ctx, "chatrooms/a_b", map[string]any{"lastMessage": "hi"}))

	// Then the other fields are kept
	doc, err := store.Get(ctx, "chatrooms/a_b")
	req.NoError(err)
	req.Equal("hi", doc.String("lastMessage"))
	req.Equal([]string{"a", "b"}, doc.Strings("participantIds"))
}

func TestStore_CreateKeepsExisting(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	doc, created, err := store.Create(ctx, "chatrooms/a_b", map[string]any{"lastMessage": "first"})
	req.NoError(err)
	req.True(created)
	req.Equal("first", doc.String("lastMessage"))

	doc, created, err = store.Create(ctx, "chatrooms/a_b", map[string]any{"lastMessage": "second"})
	req.NoError(err)
	req.False(created)
	req.Equal("first", doc.String("lastMessage"))
}

func TestStore_CreateConcurrent(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.Create(ctx, "chatrooms/a_b", map[string]any{"lastMessage": ""})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				created++
			}
		}()
	}
	wg.Wait()

	req.Empty(errs)
	req.Equal(1, created)
	docs, err := store.Query(ctx, Collection(RoomsCollection))
	req.NoError(err)
	req.Len(docs, 1)
}

func TestStore_AddAssignsIDAndServerTimestamp(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := newTestStore(t, WithClock(func() time.Time { return now }))

	doc, err := store.Add(context.Background(), "chatrooms/a_b/messages", map[string]any{
		"body":   "hello",
		"sentAt": ServerTimestamp,
	})
	req.NoError(err)
	req.NotEmpty(doc.ID)
	req.Equal("chatrooms/a_b/messages/"+doc.ID, doc.Path)
	req.True(now.Equal(doc.Time("sentAt")))
}

func TestStore_QueryOrderFilterAndChildrenOnly(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Given rooms for several users and a message sub-collection
	req.NoError(store.Set(ctx, "chatrooms/a_b", map[string]any{"participantIds": []string{"a", "b"}, "lastMessageAt": base}))
	req.NoError(store.Set(ctx, "chatrooms/a_c", map[string]any{"participantIds": []string{"a", "c"}, "lastMessageAt": base.Add(time.Hour)}))
	req.NoError(store.Set(ctx, "chatrooms/b_c", map[string]any{"participantIds": []string{"b", "c"}, "lastMessageAt": base.Add(2 * time.Hour)}))
	_, err := store.Add(ctx, "chatrooms/a_b/messages", map[string]any{"participantIds": []string{"a"}})
	req.NoError(err)

	// When querying the rooms of "a" by recency
	docs, err := store.Query(ctx, Collection(RoomsCollection).
		WhereArrayContains("participantIds", "a").
		OrderBy("lastMessageAt", Desc))

	// Then only direct children containing "a" come back, newest first
	req.NoError(err)
	req.Len(docs, 2)
	req.Equal("a_c", docs[0].ID)
	req.Equal("a_b", docs[1].ID)

	limited, err := store.Query(ctx, Collection(RoomsCollection).OrderBy("lastMessageAt", Desc).Limit(1))
	req.NoError(err)
	req.Len(limited, 1)
	req.Equal("b_c", limited[0].ID)
}

func TestStore_QueryPrefix(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	for id, name := range map[string]string{"u1": "alice", "u2": "alina", "u3": "bob"} {
		req.NoError(store.Set(ctx, "users/"+id, map[string]any{"username": name}))
	}

	docs, err := store.Query(ctx, Collection(UsersCollection).WherePrefix("username", "ali").OrderBy("username", Asc))
	req.NoError(err)
	req.Len(docs, 2)
	req.Equal("alice", docs[0].String("username"))
	req.Equal("alina", docs[1].String("username"))
}

func TestStore_QueryTiesBrokenByInsertionOrder(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := newTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		doc, err := store.Add(ctx, "chatrooms/a_b/messages", map[string]any{"sentAt": ServerTimestamp})
		req.NoError(err)
		ids = append(ids, doc.ID)
	}

	docs, err := store.Query(ctx, Collection("chatrooms/a_b/messages").OrderBy("sentAt", Desc))
	req.NoError(err)
	req.Len(docs, 5)
	for i, doc := range docs {
		req.Equal(ids[len(ids)-1-i], doc.ID)
	}
}

func TestStore_InvalidPath(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	err := store.Set(context.Background(), "users//alice", map[string]any{})
	req.ErrorIs(err, errors.ErrValidation)
}
