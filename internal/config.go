package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=8080"`
	GRPCPort       int    `env:"GRPC_PORT,default=9090"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`

	HistoryLimit      int           `env:"HISTORY_LIMIT,default=50"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=20"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MaxRestartDelay   time.Duration `env:"MAX_RESTART_DELAY,default=10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	WebsocketWriteTTL time.Duration `env:"WEBSOCKET_WRITE_TIMEOUT,default=5s"`

	FCMEndpoint         string        `env:"FCM_ENDPOINT,default=https://fcm.googleapis.com/fcm/send"`
	FCMServerKey        string        `env:"FCM_SERVER_KEY"`
	NotificationTimeout time.Duration `env:"NOTIFICATION_TIMEOUT,default=10s"`

	MinioEndpoint      string        `env:"MINIO_ENDPOINT"`
	MinioAccessKey     string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string        `env:"MINIO_SECRET_KEY"`
	MinioBucket        string        `env:"MINIO_BUCKET,default=chat-sync"`
	MinioUseSSL        bool          `env:"MINIO_USE_SSL,default=false"`
	MaxPictureBytes    int64         `env:"MAX_PICTURE_BYTES,default=5242880"`
	PictureURLValidity time.Duration `env:"PICTURE_URL_VALIDITY,default=15m"`
}

// Origins lists the browser origins allowed to open live views, besides the server's own.
func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}

// BlobStorageEnabled reports whether profile pictures can be served.
func (c Config) BlobStorageEnabled() bool {
	return c.MinioEndpoint != ""
}

func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.HistoryLimit <= 0 || c.SearchLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT and SEARCH_LIMIT must be positive")
	}
	if c.BlobStorageEnabled() && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	}
	return nil
}
