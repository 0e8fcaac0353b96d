package notification

import (
	"bytes"
	"chat-sync/domain"
	"chat-sync/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	To           string            `json:"to"`
}

// FCMGateway posts legacy FCM send requests authenticated with a server key.
type FCMGateway struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

func NewFCMGateway(endpoint, serverKey string, timeout time.Duration) *FCMGateway {
	return &FCMGateway{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// Send returns ErrNotificationDelivery for any transport failure or non 2xx answer.
func (g *FCMGateway) Send(ctx context.Context, msg domain.PushMessage) error {
	payload, err := json.Marshal(fcmRequest{
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		To:           msg.Token,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.serverKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrNotificationDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", errors.ErrNotificationDelivery, resp.StatusCode)
	}
	return nil
}
