//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-sync/docstore"
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

const (
	fieldUserID    = "userId"
	fieldUsername  = "username"
	fieldPhone     = "phone"
	fieldPushToken = "pushToken"
)

type IUserRepository interface {
	Get(ctx context.Context, userID string) (domain.User, error)
	Save(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePushToken(ctx context.Context, userID, token string) error
	SearchByUsername(ctx context.Context, prefix string, limit int) ([]domain.User, error)
}

// UserRepository stores one profile per user under "users/{userId}".
type UserRepository struct {
	store *docstore.Store
	log   *slog.Logger
}

func NewUserRepository(store *docstore.Store, log *slog.Logger) UserRepository {
	return UserRepository{store: store, log: log}
}

func userPath(userID string) string {
	return docstore.Doc(docstore.UsersCollection, userID)
}

func (u UserRepository) Get(ctx context.Context, userID string) (domain.User, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return domain.User{}, err
	}
	doc, err := u.store.Get(ctx, userPath(userID))
	if stderrors.Is(err, errors.ErrDocumentNotFound) {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, userID)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: get user %s: %w", errors.ErrRemoteOperation, userID, err)
	}
	return toUser(doc), nil
}

// Save upserts the editable profile fields.
// An existing user keeps its createdAt and push token.
func (u UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	if err := user.ValidateProfile(); err != nil {
		return domain.User{}, err
	}
	username := strings.TrimSpace(user.DisplayName)
	path := userPath(user.ID)
	doc, created, err := u.store.Create(ctx, path, map[string]any{
		fieldUserID:    user.ID,
		fieldUsername:  username,
		fieldPhone:     user.Phone,
		fieldPushToken: "",
		fieldCreatedAt: docstore.ServerTimestamp,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: save user %s: %w", errors.ErrRemoteOperation, user.ID, err)
	}
	if created {
		return toUser(doc), nil
	}
	if err = u.store.Merge(ctx, path, map[string]any{
		fieldUsername: username,
		fieldPhone:    user.Phone,
	}); err != nil {
		return domain.User{}, fmt.Errorf("%w: save user %s: %w", errors.ErrRemoteOperation, user.ID, err)
	}
	return u.Get(ctx, user.ID)
}

// UpdatePushToken replaces the device token, an empty token clears it.
func (u UserRepository) UpdatePushToken(ctx context.Context, userID, token string) error {
	err := u.store.Merge(ctx, userPath(userID), map[string]any{fieldPushToken: token})
	if stderrors.Is(err, errors.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", errors.ErrUserNotFound, userID)
	}
	if err != nil {
		return fmt.Errorf("%w: update push token of %s: %w", errors.ErrRemoteOperation, userID, err)
	}
	return nil
}

// SearchByUsername returns users whose username starts with prefix, case sensitive, by username.
func (u UserRepository) SearchByUsername(ctx context.Context, prefix string, limit int) ([]domain.User, error) {
	docs, err := u.store.Query(ctx, docstore.Collection(docstore.UsersCollection).
		WherePrefix(fieldUsername, prefix).
		OrderBy(fieldUsername, docstore.Asc).
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: search users by %q: %w", errors.ErrRemoteOperation, prefix, err)
	}
	return lo.Map(docs, func(doc docstore.Document, _ int) domain.User {
		return toUser(doc)
	}), nil
}

func toUser(doc docstore.Document) domain.User {
	return domain.User{
		ID:          doc.ID,
		DisplayName: doc.String(fieldUsername),
		Phone:       doc.String(fieldPhone),
		PushToken:   doc.String(fieldPushToken),
		CreatedAt:   doc.Time(fieldCreatedAt),
	}
}
