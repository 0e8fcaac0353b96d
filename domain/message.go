// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"chat-sync/errors"
	"strings"
	"time"
)

// Message represents an immutable chat event.
// ID and SentAt are assigned by the store at append time.
type Message struct {
	ID       string    `json:"id"`
	RoomID   RoomID    `json:"chatroomId"`
	SenderID string    `json:"senderId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// NormalizeBody trims the body and rejects it when nothing is left.
func NormalizeBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", errors.ErrEmptyBody
	}
	return trimmed, nil
}
