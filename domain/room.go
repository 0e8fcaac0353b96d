package domain

import (
	"strings"
	"time"
)

// RoomSeparator joins the two participant ids of a room.
// It is forbidden inside a raw user id, see ValidateUserID.
const RoomSeparator = "_"

type RoomID string

func (r RoomID) String() string { return string(r) }

// Room is the shared conversation of exactly two participants.
// ParticipantIDs is set at creation and never changes; only the summary fields move.
type Room struct {
	ID                  RoomID    `json:"chatroomId"`
	ParticipantIDs      [2]string `json:"participantIds"`
	LastMessage         string    `json:"lastMessage"`
	LastMessageSenderID string    `json:"lastMessageSenderId"`
	LastMessageAt       time.Time `json:"lastMessageAt"`
	CreatedAt           time.Time `json:"createdAt"`
}

// DeriveRoomID maps an unordered pair of users to one room id.
// The lesser id under byte-wise string order comes first, so both sides always agree.
func DeriveRoomID(userA, userB string) RoomID {
	if userB < userA {
		userA, userB = userB, userA
	}
	return RoomID(userA + RoomSeparator + userB)
}

// Participants returns the pair in the same order DeriveRoomID uses.
func Participants(userA, userB string) [2]string {
	if userB < userA {
		return [2]string{userB, userA}
	}
	return [2]string{userA, userB}
}

// SplitRoomID reverses DeriveRoomID.
func SplitRoomID(id RoomID) (string, string, bool) {
	a, b, ok := strings.Cut(string(id), RoomSeparator)
	if !ok || a == "" || b == "" || strings.Contains(b, RoomSeparator) {
		return "", "", false
	}
	return a, b, true
}

func (r Room) HasParticipant(userID string) bool {
	return r.ParticipantIDs[0] == userID || r.ParticipantIDs[1] == userID
}

// OtherParticipant returns the participant that is not userID.
func (r Room) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case r.ParticipantIDs[0]:
		return r.ParticipantIDs[1], true
	case r.ParticipantIDs[1]:
		return r.ParticipantIDs[0], true
	}
	return "", false
}

// HasSummary is false until the first message lands.
func (r Room) HasSummary() bool {
	return r.LastMessageSenderID != ""
}

// FormatClock renders a summary timestamp the way room lists display it.
func FormatClock(t time.Time) string {
	return t.Local().Format("15:04")
}
