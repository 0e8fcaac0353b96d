package storage

import (
	"bytes"
	"chat-sync/domain/mimetypes"
	"chat-sync/errors"
	"chat-sync/mocks"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestProfilePictures_UploadSniffsImage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIObjectStore(ctrl)
	pictures := NewProfilePictures(store, logs.GetLoggerFromLevel(slog.LevelDebug), 1024, time.Minute)

	// Then the picture lands under the user key with the sniffed type
	store.EXPECT().
		Put(gomock.Any(), "profile_pic/alice", gomock.Any(), int64(len(pngHeader)), "image/png").
		Return(nil).
		Times(1)

	// When a png is uploaded
	mime, err := pictures.Upload(context.Background(), "alice", bytes.NewReader(pngHeader))

	req.NoError(err)
	req.Equal(mimetypes.ImagePNG, mime)
}

func TestProfilePictures_RejectsNonImagesAndOversize(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIObjectStore(ctrl)
	pictures := NewProfilePictures(store, logs.GetLoggerFromLevel(slog.LevelDebug), 16, time.Minute)

	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := pictures.Upload(context.Background(), "alice", strings.NewReader("hello"))
	req.ErrorIs(err, errors.ErrInvalidPicture)

	_, err = pictures.Upload(context.Background(), "alice", bytes.NewReader(pngHeader))
	req.ErrorIs(err, errors.ErrInvalidPicture)

	_, err = pictures.Upload(context.Background(), "alice", bytes.NewReader(nil))
	req.ErrorIs(err, errors.ErrValidation)
}

func TestProfilePictures_URL(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIObjectStore(ctrl)
	pictures := NewProfilePictures(store, logs.GetLoggerFromLevel(slog.LevelDebug), 1024, time.Minute)

	store.EXPECT().PresignGet(gomock.Any(), "profile_pic/bob", time.Minute).Return("https://blob/bob", nil)

	url, err := pictures.URL(context.Background(), "bob")
	req.NoError(err)
	req.Equal("https://blob/bob", url)
}

func TestProfilePictures_DisabledWithoutStore(t *testing.T) {
	req := require.New(t)
	pictures := NewProfilePictures(nil, logs.GetLoggerFromLevel(slog.LevelDebug), 1024, time.Minute)

	_, err := pictures.Upload(context.Background(), "alice", bytes.NewReader(pngHeader))
	req.ErrorIs(err, errors.ErrBlobStoreDisabled)
	_, err = pictures.URL(context.Background(), "alice")
	req.ErrorIs(err, errors.ErrBlobStoreDisabled)
}
