package services

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/repositories"
	"chat-sync/session"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
)

type IChatService interface {
	OpenRoom(ctx context.Context, otherUserID string) (domain.Room, error)
	SendMessage(ctx context.Context, roomID domain.RoomID, body string) (domain.Message, error)
	WatchMessages(ctx context.Context, roomID domain.RoomID) (*repositories.Subscription[domain.Message], error)
	WatchRooms(ctx context.Context) (*repositories.Subscription[domain.Room], error)
	History(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error)
	Authorize(roomID domain.RoomID) error
}

// ChatService acts on behalf of the user of one session.
type ChatService struct {
	session  *session.Session
	messages repositories.IMessageRepository
	rooms    repositories.IRoomRepository
	users    repositories.IUserRepository
	notifier contract.INotifier
	log      *slog.Logger
}

func NewChatService(s *session.Session, messages repositories.IMessageRepository, rooms repositories.IRoomRepository,
	users repositories.IUserRepository, notifier contract.INotifier, log *slog.Logger) *ChatService {
	return &ChatService{
		session:  s,
		messages: messages,
		rooms:    rooms,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// OpenRoom returns the room shared with otherUserID, creating it on first contact.
func (s *ChatService) OpenRoom(ctx context.Context, otherUserID string) (domain.Room, error) {
	me, err := s.session.UserID()
	if err != nil {
		return domain.Room{}, err
	}
	if err = domain.ValidateUserID(otherUserID); err != nil {
		return domain.Room{}, err
	}
	if otherUserID == me {
		return domain.Room{}, fmt.Errorf("%w: cannot open a room with yourself", errors.ErrValidation)
	}
	return s.rooms.GetOrCreate(ctx, domain.DeriveRoomID(me, otherUserID), domain.Participants(me, otherUserID))
}

// SendMessage ensures the room exists, appends the message, then refreshes the room summary, then notifies the other participant.
// Only the append decides the outcome: a failed summary update is logged and the push is best effort.
func (s *ChatService) SendMessage(ctx context.Context, roomID domain.RoomID, body string) (domain.Message, error) {
	me, err := s.session.UserID()
	if err != nil {
		return domain.Message{}, err
	}
	if _, err = domain.NormalizeBody(body); err != nil {
		observability.AppendFailures.WithLabelValues("validation").Inc()
		return domain.Message{}, err
	}
	recipient, err := s.otherParticipant(roomID, me)
	if err != nil {
		observability.AppendFailures.WithLabelValues("forbidden").Inc()
		return domain.Message{}, err
	}
	// Messages always belong to a stored room, first contact creates it.
	if _, err = s.rooms.GetOrCreate(ctx, roomID, domain.Participants(me, recipient)); err != nil {
		observability.AppendFailures.WithLabelValues("remote").Inc()
		return domain.Message{}, err
	}

	msg, err := s.messages.Append(ctx, roomID, me, body)
	if err != nil {
		reason := "remote"
		if stderrors.Is(err, errors.ErrValidation) {
			reason = "validation"
		}
		observability.AppendFailures.WithLabelValues(reason).Inc()
		return domain.Message{}, err
	}
	observability.MessagesAppended.Inc()

	if err = s.rooms.UpdateSummary(ctx, roomID, msg.Body, me, msg.SentAt); err != nil {
		observability.SummaryFailures.Inc()
		s.log.Warn("Room summary is stale, message was stored", "room", roomID, "message", msg.ID, "error", err)
	}

	s.notify(ctx, me, recipient, msg.Body)
	return msg, nil
}

// notify resolves both profiles; any lookup failure drops the push.
func (s *ChatService) notify(ctx context.Context, senderID, recipientID, body string) {
	recipient, err := s.users.Get(ctx, recipientID)
	if err != nil {
		s.log.Debug("No push for recipient", "user", recipientID, "error", err)
		return
	}
	title := senderID
	if sender, err := s.users.Get(ctx, senderID); err == nil && sender.DisplayName != "" {
		title = sender.DisplayName
	}
	s.notifier.Notify(ctx, recipient.PushToken, title, body, map[string]string{domain.PushDataUserID: senderID})
}

func (s *ChatService) WatchMessages(ctx context.Context, roomID domain.RoomID) (*repositories.Subscription[domain.Message], error) {
	me, err := s.session.UserID()
	if err != nil {
		return nil, err
	}
	if _, err = s.otherParticipant(roomID, me); err != nil {
		return nil, err
	}
	return s.messages.Subscribe(ctx, roomID)
}

func (s *ChatService) WatchRooms(ctx context.Context) (*repositories.Subscription[domain.Room], error) {
	me, err := s.session.UserID()
	if err != nil {
		return nil, err
	}
	return s.rooms.SubscribeForUser(ctx, me)
}

func (s *ChatService) History(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error) {
	me, err := s.session.UserID()
	if err != nil {
		return nil, err
	}
	if _, err = s.otherParticipant(roomID, me); err != nil {
		return nil, err
	}
	return s.messages.History(ctx, roomID, limit)
}

// Authorize checks that the session user belongs to roomID without touching the store.
func (s *ChatService) Authorize(roomID domain.RoomID) error {
	me, err := s.session.UserID()
	if err != nil {
		return err
	}
	_, err = s.otherParticipant(roomID, me)
	return err
}

// otherParticipant reads membership from the room id itself, which is injective over valid user ids.
func (s *ChatService) otherParticipant(roomID domain.RoomID, me string) (string, error) {
	a, b, ok := domain.SplitRoomID(roomID)
	switch {
	case !ok:
		return "", fmt.Errorf("%w: malformed room id %q", errors.ErrValidation, roomID)
	case a == me:
		return b, nil
	case b == me:
		return a, nil
	}
	return "", fmt.Errorf("%w: %s in %s", errors.ErrNotParticipant, me, roomID)
}
