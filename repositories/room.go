//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"chat-sync/docstore"
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

const (
	fieldRoomID              = "chatroomId"
	fieldParticipantIDs      = "participantIds"
	fieldLastMessage         = "lastMessage"
	fieldLastMessageSenderID = "lastMessageSenderId"
	fieldLastMessageAt       = "lastMessageAt"
	fieldCreatedAt           = "createdAt"
)

type IRoomRepository interface {
	Get(ctx context.Context, roomID domain.RoomID) (domain.Room, error)
	GetOrCreate(ctx context.Context, roomID domain.RoomID, participants [2]string) (domain.Room, error)
	UpdateSummary(ctx context.Context, roomID domain.RoomID, lastMessage, senderID string, at time.Time) error
	SubscribeForUser(ctx context.Context, userID string) (*Subscription[domain.Room], error)
}

// RoomRepository is the per user directory of rooms, "chatrooms/{roomId}".
// The room id is the document key, which is what makes creation converge.
type RoomRepository struct {
	store *docstore.Store
	log   *slog.Logger
}

func NewRoomRepository(store *docstore.Store, log *slog.Logger) RoomRepository {
	return RoomRepository{store: store, log: log}
}

func roomPath(roomID domain.RoomID) string {
	return docstore.Doc(docstore.RoomsCollection, roomID.String())
}

func (r RoomRepository) Get(ctx context.Context, roomID domain.RoomID) (domain.Room, error) {
	doc, err := r.store.Get(ctx, roomPath(roomID))
	if stderrors.Is(err, errors.ErrDocumentNotFound) {
		return domain.Room{}, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, roomID)
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("%w: get room %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	return toRoom(doc), nil
}

// GetOrCreate returns the existing room unmodified or creates it with an empty summary.
// lastMessageAt starts at the creation time so a new room sorts by recency.
func (r RoomRepository) GetOrCreate(ctx context.Context, roomID domain.RoomID, participants [2]string) (domain.Room, error) {
	for _, id := range participants {
		if err := domain.ValidateUserID(id); err != nil {
			return domain.Room{}, err
		}
	}
	if want := domain.DeriveRoomID(participants[0], participants[1]); want != roomID {
		return domain.Room{}, fmt.Errorf("%w: room %s does not belong to %v", errors.ErrValidation, roomID, participants)
	}
	doc, created, err := r.store.Create(ctx, roomPath(roomID), map[string]any{
		fieldRoomID:              roomID.String(),
		fieldParticipantIDs:      domain.Participants(participants[0], participants[1]),
		fieldLastMessage:         "",
		fieldLastMessageSenderID: "",
		fieldLastMessageAt:       docstore.ServerTimestamp,
		fieldCreatedAt:           docstore.ServerTimestamp,
	})
	if err != nil {
		return domain.Room{}, fmt.Errorf("%w: get or create room %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	if created {
		r.log.Info("Room created", "room", roomID)
	}
	return toRoom(doc), nil
}

// UpdateSummary overwrites the three summary fields without any version check.
// A racing sender may overwrite a newer summary with an older one: last write wins.
func (r RoomRepository) UpdateSummary(ctx context.Context, roomID domain.RoomID, lastMessage, senderID string, at time.Time) error {
	err := r.store.Merge(ctx, roomPath(roomID), map[string]any{
		fieldLastMessage:         lastMessage,
		fieldLastMessageSenderID: senderID,
		fieldLastMessageAt:       at,
	})
	if err != nil {
		return fmt.Errorf("%w: update summary of %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	return nil
}

// SubscribeForUser streams every room of userID, most recent activity first.
func (r RoomRepository) SubscribeForUser(ctx context.Context, userID string) (*Subscription[domain.Room], error) {
	watch, err := r.store.Watch(ctx, docstore.Collection(docstore.RoomsCollection).
		WhereArrayContains(fieldParticipantIDs, userID).
		OrderBy(fieldLastMessageAt, docstore.Desc))
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe to rooms of %s: %w", errors.ErrRemoteOperation, userID, err)
	}
	return subscribe(ctx, watch, toRoom), nil
}

func toRoom(doc docstore.Document) domain.Room {
	room := domain.Room{
		ID:                  domain.RoomID(doc.ID),
		LastMessage:         doc.String(fieldLastMessage),
		LastMessageSenderID: doc.String(fieldLastMessageSenderID),
		LastMessageAt:       doc.Time(fieldLastMessageAt),
		CreatedAt:           doc.Time(fieldCreatedAt),
	}
	copy(room.ParticipantIDs[:], doc.Strings(fieldParticipantIDs))
	return room
}

// All lists every room, most recently active first.
func (r RoomRepository) All(ctx context.Context) ([]domain.Room, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(docstore.RoomsCollection).
		OrderBy(fieldLastMessageAt, docstore.Desc))
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %w", errors.ErrRemoteOperation, err)
	}
	return lo.Map(docs, func(doc docstore.Document, _ int) domain.Room {
		return toRoom(doc)
	}), nil
}
