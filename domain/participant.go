// Package domain contains core concepts of the chat system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-sync/errors"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const MinUsernameLength = 3

// User is owned by the auth collaborator for its ID and by its owner for the profile.
// PushToken is refreshed by the system and cleared on sign-out.
type User struct {
	ID          string    `json:"userId" validate:"required,excludesall=_/"`
	DisplayName string    `json:"username" validate:"required,min=3"`
	Phone       string    `json:"phone,omitempty"`
	PushToken   string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidateUserID rejects ids that would break room id derivation.
func ValidateUserID(id string) error {
	if id == "" || strings.ContainsAny(id, RoomSeparator+"/") {
		return fmt.Errorf("%w: %q", errors.ErrInvalidUserID, id)
	}
	return nil
}

// ValidateProfile checks the fields a user may edit.
// The display name is trimmed before its length is checked.
func (u User) ValidateProfile() error {
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return err
	}
	for _, fe := range fieldErrors {
		if fe.Field() == "ID" {
			return fmt.Errorf("%w: %q", errors.ErrInvalidUserID, u.ID)
		}
	}
	return fmt.Errorf("%w: %q", errors.ErrUsernameTooShort, u.DisplayName)
}
