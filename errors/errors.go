package errors

import "fmt"

// ErrValidation is rejected locally before any network call.
var (
	ErrValidation       = fmt.Errorf("validation failed")
	ErrEmptyBody        = fmt.Errorf("%w: message body is empty", ErrValidation)
	ErrUsernameTooShort = fmt.Errorf("%w: username should be at least 3 characters", ErrValidation)
	ErrInvalidUserID    = fmt.Errorf("%w: invalid user id", ErrValidation)
	ErrSearchTooShort   = fmt.Errorf("%w: search term should be at least 3 characters", ErrValidation)
	ErrInvalidPicture   = fmt.Errorf("%w: profile picture must be an image", ErrValidation)
)

// ErrRemoteOperation wraps every store failure surfaced to a caller. Nothing retries it.
var (
	ErrRemoteOperation  = fmt.Errorf("remote operation failed")
	ErrDocumentNotFound = fmt.Errorf("document not found")
	ErrRoomNotFound     = fmt.Errorf("room not found")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrWatchClosed      = fmt.Errorf("watch closed")
)

var (
	ErrNotLoggedIn          = fmt.Errorf("not logged in")
	ErrNotParticipant       = fmt.Errorf("user is not a participant of the room")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrNotificationDelivery = fmt.Errorf("notification delivery failed")
	ErrBlobStoreDisabled    = fmt.Errorf("blob storage is not configured")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)
