package services

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/domain/mimetypes"
	"chat-sync/errors"
	"chat-sync/repositories"
	"chat-sync/session"
	"chat-sync/storage"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

const MinSearchLength = 3

type IUserService interface {
	SaveProfile(ctx context.Context, displayName, phone string) (domain.User, error)
	RefreshPushToken(ctx context.Context, token string) error
	SearchUsers(ctx context.Context, term string, limit int) ([]domain.User, error)
	SignOut(ctx context.Context) error
	UploadPicture(ctx context.Context, r io.Reader) (mimetypes.MIME, error)
	PictureURL(ctx context.Context, userID string) (string, error)
	DeletePicture(ctx context.Context) error
}

// UserService manages the profile of the session user.
type UserService struct {
	session  *session.Session
	users    repositories.IUserRepository
	pictures *storage.ProfilePictures
	registry contract.IRegistry
	log      *slog.Logger
}

func NewUserService(s *session.Session, users repositories.IUserRepository, pictures *storage.ProfilePictures,
	registry contract.IRegistry, log *slog.Logger) *UserService {
	return &UserService{session: s, users: users, pictures: pictures, registry: registry, log: log}
}

func (s *UserService) SaveProfile(ctx context.Context, displayName, phone string) (domain.User, error) {
	me, err := s.session.UserID()
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Save(ctx, domain.User{ID: me, DisplayName: displayName, Phone: phone})
}

// RefreshPushToken stores the current device token, called on every start.
func (s *UserService) RefreshPushToken(ctx context.Context, token string) error {
	me, err := s.session.UserID()
	if err != nil {
		return err
	}
	return s.users.UpdatePushToken(ctx, me, strings.TrimSpace(token))
}

// SearchUsers matches usernames by prefix and leaves the session user out.
func (s *UserService) SearchUsers(ctx context.Context, term string, limit int) ([]domain.User, error) {
	me, err := s.session.UserID()
	if err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return nil, fmt.Errorf("%w: %q", errors.ErrSearchTooShort, term)
	}
	users, err := s.users.SearchByUsername(ctx, term, limit+1)
	if err != nil {
		return nil, err
	}
	users = lo.Reject(users, func(u domain.User, _ int) bool { return u.ID == me })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// SignOut clears the push token so the device stops receiving pushes,
// closes every live view of the user and ends the session.
// The session ends even when the token could not be cleared.
func (s *UserService) SignOut(ctx context.Context) error {
	me, err := s.session.UserID()
	if err != nil {
		return err
	}
	tokenErr := s.users.UpdatePushToken(ctx, me, "")
	if tokenErr != nil {
		s.log.Warn("Push token not cleared on sign-out", "user", me, "error", tokenErr)
	}
	closed := s.registry.UnsubscribeAll(me)
	s.session.SignOut()
	s.log.Info("Signed out", "user", me, "live_views_closed", closed)
	return tokenErr
}

func (s *UserService) UploadPicture(ctx context.Context, r io.Reader) (mimetypes.MIME, error) {
	me, err := s.session.UserID()
	if err != nil {
		return mimetypes.Unknown, err
	}
	return s.pictures.Upload(ctx, me, r)
}

func (s *UserService) PictureURL(ctx context.Context, userID string) (string, error) {
	if _, err := s.session.UserID(); err != nil {
		return "", err
	}
	if err := domain.ValidateUserID(userID); err != nil {
		return "", err
	}
	return s.pictures.URL(ctx, userID)
}

// DeletePicture removes the picture of the session user.
func (s *UserService) DeletePicture(ctx context.Context) error {
	me, err := s.session.UserID()
	if err != nil {
		return err
	}
	return s.pictures.Delete(ctx, me)
}
