// Package session carries the identity of the signed-in user explicitly.
// There is no process wide current user: callers receive a *Session.
package session

import (
	"chat-sync/errors"
	"context"
	"slices"
	"sync"
)

type contextKey string

const sessionKey contextKey = "session"

// Session belongs to one signed-in user until SignOut.
type Session struct {
	mu     sync.Mutex
	userID string
	hooks  []func()
}

func New(userID string) *Session {
	return &Session{userID: userID}
}

// CurrentUserID is empty once signed out.
func (s *Session) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) IsLoggedIn() bool {
	return s.CurrentUserID() != ""
}

// UserID returns ErrNotLoggedIn after sign-out.
func (s *Session) UserID() (string, error) {
	id := s.CurrentUserID()
	if id == "" {
		return "", errors.ErrNotLoggedIn
	}
	return id, nil
}

// OnSignOut registers a teardown, run in reverse registration order.
// A hook registered after sign-out runs immediately.
func (s *Session) OnSignOut(hook func()) {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		hook()
		return
	}
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// SignOut forgets the user and runs the hooks once.
func (s *Session) SignOut() {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.userID = ""
	s.mu.Unlock()
	for _, hook := range slices.Backward(hooks) {
		hook()
	}
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
