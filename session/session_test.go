package session

import (
	"chat-sync/errors"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSession_SignOutRunsHooksOnceInReverseOrder(t *testing.T) {
	req := require.New(t)
	s := New("alice")
	req.True(s.IsLoggedIn())

	var calls []string
	s.OnSignOut(func() { calls = append(calls, "rooms") })
	s.OnSignOut(func() { calls = append(calls, "messages") })

	// When signing out twice
	s.SignOut()
	s.SignOut()

	// Then hooks ran once, last registered first
	req.Equal([]string{"messages", "rooms"}, calls)
	req.False(s.IsLoggedIn())
	req.Empty(s.CurrentUserID())
	_, err := s.UserID()
	req.ErrorIs(err, errors.ErrNotLoggedIn)

	// A hook registered after sign-out runs right away
	s.OnSignOut(func() { calls = append(calls, "late") })
	req.Equal([]string{"messages", "rooms", "late"}, calls)
}

func TestSession_Context(t *testing.T) {
	req := require.New(t)
	_, ok := FromContext(context.Background())
	req.False(ok)

	s := New("bob")
	got, ok := FromContext(WithSession(context.Background(), s))
	req.True(ok)
	req.Same(s, got)
}

func TestIssuer_GenerateValidate(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Generate("alice")
	req.NoError(err)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
	req.Equal("alice", claims.Subject)
}

func TestIssuer_RejectsForeignExpiredAndUnsignedTokens(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer("test-secret", time.Hour)

	// Signed with another secret
	foreign, err := NewIssuer("other-secret", time.Hour).Generate("alice")
	req.NoError(err)
	_, err = issuer.Validate(foreign)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Expired
	expired := NewIssuer("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Generate("alice")
	req.NoError(err)
	_, err = issuer.Validate(old)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// alg none
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)
	_, err = issuer.Validate(unsigned)
	req.ErrorIs(err, errors.ErrInvalidToken)

	_, err = issuer.Validate("garbage")
	req.ErrorIs(err, errors.ErrInvalidToken)
}
