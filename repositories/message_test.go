package repositories

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_AppendRejectsBlankBody(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newTestStore(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	ctx := context.Background()
	roomID := domain.DeriveRoomID("alice", "bob")

	// When a whitespace only body is appended
	_, err := repository.Append(ctx, roomID, "alice", "   \n\t")

	// Then it is a validation error and nothing is written
	req.ErrorIs(err, errors.ErrEmptyBody)
	req.ErrorIs(err, errors.ErrValidation)
	history, err := repository.History(ctx, roomID, 0)
	req.NoError(err)
	req.Empty(history)
}

func TestMessageRepository_AppendAndHistoryNewestFirst(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newTestStore(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	ctx := context.Background()
	roomID := domain.DeriveRoomID("alice", "bob")

	// Given three messages
	first, err := repository.Append(ctx, roomID, "alice", "  hi  ")
	req.NoError(err)
	_, err = repository.Append(ctx, roomID, "bob", "hello")
	req.NoError(err)
	last, err := repository.Append(ctx, roomID, "alice", "how are you?")
	req.NoError(err)

	// Then ids and timestamps come from the store and the body is trimmed
	req.NotEmpty(first.ID)
	req.Equal("hi", first.Body)
	req.Equal(roomID, first.RoomID)
	req.True(last.SentAt.After(first.SentAt))

	// When the history is read with a limit
	history, err := repository.History(ctx, roomID, 2)

	// Then the newest messages come first
	req.NoError(err)
	req.Len(history, 2)
	req.Equal(last.ID, history[0].ID)
	req.Equal("hello", history[1].Body)
}

func TestMessageRepository_SubscribeSnapshotThenLive(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newTestStore(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	ctx := context.Background()
	roomID := domain.DeriveRoomID("alice", "bob")
	other := domain.DeriveRoomID("alice", "carol")

	first, err := repository.Append(ctx, roomID, "alice", "one")
	req.NoError(err)

	// Given a subscription opened after one message
	sub, err := repository.Subscribe(ctx, roomID)
	req.NoError(err)
	defer sub.Close()

	// Then the snapshot carries it
	snapshot := next(t, sub)
	req.Len(snapshot, 1)
	req.Equal(event.Added, snapshot[0].Type)
	req.Equal(first.ID, snapshot[0].Key)
	req.Equal("one", snapshot[0].Value.Body)

	// When a message lands in another room then in this one
	_, err = repository.Append(ctx, other, "carol", "elsewhere")
	req.NoError(err)
	second, err := repository.Append(ctx, roomID, "bob", "two")
	req.NoError(err)

	// Then only the message of this room is delivered
	batch := next(t, sub)
	req.Len(batch, 1)
	req.Equal(event.Added, batch[0].Type)
	req.Equal(second.ID, batch[0].Key)
	req.Equal("bob", batch[0].Value.SenderID)
}

func TestSubscription_CloseIsIdempotentAndClosesChanges(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(newTestStore(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	sub, err := repository.Subscribe(context.Background(), domain.DeriveRoomID("alice", "bob"))
	req.NoError(err)

	sub.Close()
	sub.Close()

	for range sub.Changes() {
	}
	req.NoError(sub.Err())
}
