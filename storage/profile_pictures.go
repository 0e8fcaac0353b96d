package storage

import (
	"bytes"
	"chat-sync/contract"
	"chat-sync/domain/mimetypes"
	"chat-sync/errors"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const profilePicturePrefix = "profile_pic/"

func PictureKey(userID string) string {
	return profilePicturePrefix + userID
}

// ProfilePictures stores one picture per user, overwritten on upload.
// A nil object store disables the feature.
type ProfilePictures struct {
	store    contract.IObjectStore
	log      *slog.Logger
	maxBytes int64
	urlTTL   time.Duration
}

func NewProfilePictures(store contract.IObjectStore, log *slog.Logger, maxBytes int64, urlTTL time.Duration) *ProfilePictures {
	return &ProfilePictures{store: store, log: log, maxBytes: maxBytes, urlTTL: urlTTL}
}

// Upload sniffs the content and only accepts images up to maxBytes.
func (p *ProfilePictures) Upload(ctx context.Context, userID string, r io.Reader) (mimetypes.MIME, error) {
	if p.store == nil {
		return mimetypes.Unknown, errors.ErrBlobStoreDisabled
	}
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return mimetypes.Unknown, err
	}
	if len(data) == 0 || int64(len(data)) > p.maxBytes {
		return mimetypes.Unknown, fmt.Errorf("%w: size must be between 1 and %d bytes", errors.ErrInvalidPicture, p.maxBytes)
	}
	detected := mimetype.Detect(data)
	contentType, ok := mimetypes.OneOf(detected.String(), mimetypes.ProfilePictures)
	if !ok {
		return mimetypes.Unknown, fmt.Errorf("%w: %s is not an accepted image", errors.ErrInvalidPicture, detected.String())
	}
	if err = p.store.Put(ctx, PictureKey(userID), bytes.NewReader(data), int64(len(data)), string(contentType)); err != nil {
		return mimetypes.Unknown, fmt.Errorf("%w: %w", errors.ErrRemoteOperation, err)
	}
	p.log.Debug("Profile picture stored", "user", userID, "mime", contentType, "bytes", len(data))
	return contentType, nil
}

// URL returns a temporary download link for the picture of userID.
func (p *ProfilePictures) URL(ctx context.Context, userID string) (string, error) {
	if p.store == nil {
		return "", errors.ErrBlobStoreDisabled
	}
	url, err := p.store.PresignGet(ctx, PictureKey(userID), p.urlTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrRemoteOperation, err)
	}
	return url, nil
}

func (p *ProfilePictures) Delete(ctx context.Context, userID string) error {
	if p.store == nil {
		return errors.ErrBlobStoreDisabled
	}
	if err := p.store.Delete(ctx, PictureKey(userID)); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRemoteOperation, err)
	}
	return nil
}
