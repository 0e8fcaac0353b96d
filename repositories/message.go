//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-sync/docstore"
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

const (
	fieldSenderID = "senderId"
	fieldBody     = "body"
	fieldSentAt   = "sentAt"
)

type IMessageRepository interface {
	Append(ctx context.Context, roomID domain.RoomID, senderID, body string) (domain.Message, error)
	Subscribe(ctx context.Context, roomID domain.RoomID) (*Subscription[domain.Message], error)
	History(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error)
}

// MessageRepository is the append only log of messages, one collection per room:
// "chatrooms/{roomId}/messages/{messageId}".
type MessageRepository struct {
	store *docstore.Store
	log   *slog.Logger
}

func NewMessageRepository(store *docstore.Store, log *slog.Logger) MessageRepository {
	return MessageRepository{store: store, log: log}
}

func messagesCollection(roomID domain.RoomID) string {
	return docstore.Doc(docstore.RoomsCollection, roomID.String(), docstore.MessagesCollection)
}

func messagesQuery(roomID domain.RoomID) docstore.Query {
	return docstore.Collection(messagesCollection(roomID)).OrderBy(fieldSentAt, docstore.Desc)
}

// Append validates the body before touching the store.
// The message id and sentAt are assigned by the store; the call returns once the write is durable.
func (m MessageRepository) Append(ctx context.Context, roomID domain.RoomID, senderID, body string) (domain.Message, error) {
	body, err := domain.NormalizeBody(body)
	if err != nil {
		return domain.Message{}, err
	}
	doc, err := m.store.Add(ctx, messagesCollection(roomID), map[string]any{
		fieldSenderID: senderID,
		fieldBody:     body,
		fieldSentAt:   docstore.ServerTimestamp,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: append message to %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	m.log.Debug("Message appended", "room", roomID, "id", doc.ID)
	return toMessage(roomID)(doc), nil
}

// Subscribe streams the room messages ordered by sentAt, newest first.
func (m MessageRepository) Subscribe(ctx context.Context, roomID domain.RoomID) (*Subscription[domain.Message], error) {
	watch, err := m.store.Watch(ctx, messagesQuery(roomID))
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe to %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	return subscribe(ctx, watch, toMessage(roomID)), nil
}

// History returns at most limit messages in subscription order.
func (m MessageRepository) History(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error) {
	docs, err := m.store.Query(ctx, messagesQuery(roomID).Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: history of %s: %w", errors.ErrRemoteOperation, roomID, err)
	}
	return lo.Map(docs, func(doc docstore.Document, _ int) domain.Message {
		return toMessage(roomID)(doc)
	}), nil
}

func toMessage(roomID domain.RoomID) func(docstore.Document) domain.Message {
	return func(doc docstore.Document) domain.Message {
		return domain.Message{
			ID:       doc.ID,
			RoomID:   roomID,
			SenderID: doc.String(fieldSenderID),
			Body:     doc.String(fieldBody),
			SentAt:   doc.Time(fieldSentAt),
		}
	}
}
