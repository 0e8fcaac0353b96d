package domain

import (
	"chat-sync/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDeriveRoomID_Commutative(t *testing.T) {
	req := require.New(t)

	// Given two users
	alice, bob := "alice", "bob"

	// When both sides derive the room id
	fromAlice := DeriveRoomID(alice, bob)
	fromBob := DeriveRoomID(bob, alice)

	// Then they agree and the lesser id comes first
	req.Equal(fromAlice, fromBob)
	req.Equal(RoomID("alice_bob"), fromAlice)
}

func TestDeriveRoomID_StableAcrossCalls(t *testing.T) {
	req := require.New(t)
	for i := 0; i < 50; i++ {
		a, b := uuid.NewString(), uuid.NewString()
		first := DeriveRoomID(a, b)
		req.Equal(first, DeriveRoomID(a, b))
		req.Equal(first, DeriveRoomID(b, a))
	}
}

func TestDeriveRoomID_OrderIsLexicographic(t *testing.T) {
	req := require.New(t)
	// "Zed" < "alice" byte-wise, a hash based order would not guarantee it
	req.Equal(RoomID("Zed_alice"), DeriveRoomID("alice", "Zed"))
	req.Equal(RoomID("user1_user10"), DeriveRoomID("user10", "user1"))
}

func TestSplitRoomID(t *testing.T) {
	req := require.New(t)

	a, b, ok := SplitRoomID(DeriveRoomID("bob", "alice"))
	req.True(ok)
	req.Equal("alice", a)
	req.Equal("bob", b)

	_, _, ok = SplitRoomID("lonely")
	req.False(ok)
	_, _, ok = SplitRoomID("a_b_c")
	req.False(ok)
}

func TestRoom_OtherParticipant(t *testing.T) {
	req := require.New(t)
	room := Room{ID: DeriveRoomID("alice", "bob"), ParticipantIDs: Participants("bob", "alice")}

	other, ok := room.OtherParticipant("alice")
	req.True(ok)
	req.Equal("bob", other)

	other, ok = room.OtherParticipant("bob")
	req.True(ok)
	req.Equal("alice", other)

	_, ok = room.OtherParticipant("mallory")
	req.False(ok)
	req.False(room.HasParticipant("mallory"))
	req.False(room.HasSummary())
}

func TestNormalizeBody(t *testing.T) {
	req := require.New(t)

	_, err := NormalizeBody("")
	req.ErrorIs(err, errors.ErrEmptyBody)
	req.ErrorIs(err, errors.ErrValidation)

	_, err = NormalizeBody("   \n\t")
	req.ErrorIs(err, errors.ErrEmptyBody)

	body, err := NormalizeBody("  hi ")
	req.NoError(err)
	req.Equal("hi", body)
}

func TestUser_ValidateProfile(t *testing.T) {
	req := require.New(t)

	req.NoError(User{ID: "alice", DisplayName: "Alice", CreatedAt: time.Now()}.ValidateProfile())

	err := User{ID: "alice", DisplayName: " Al "}.ValidateProfile()
	req.ErrorIs(err, errors.ErrUsernameTooShort)
	req.ErrorIs(err, errors.ErrValidation)

	err = User{ID: "al_ice", DisplayName: "Alice"}.ValidateProfile()
	req.ErrorIs(err, errors.ErrInvalidUserID)

	req.ErrorIs(ValidateUserID("a/b"), errors.ErrInvalidUserID)
	req.ErrorIs(ValidateUserID(""), errors.ErrInvalidUserID)
	req.NoError(ValidateUserID("alice"))
}
