// Package notification delivers best effort push notifications.
// A notification never blocks nor fails the operation that triggered it.
package notification

import (
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/observability"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher sends each notification in its own goroutine, detached from
// the caller's cancellation and bounded by timeout.
type Dispatcher struct {
	gateway contract.IPushGateway
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(gateway contract.IPushGateway, log *slog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{gateway: gateway, log: log, timeout: timeout}
}

// Notify returns immediately. An empty token means the recipient has no device: nothing is sent.
func (d *Dispatcher) Notify(ctx context.Context, token, title, body string, data map[string]string) {
	if token == "" {
		observability.Notifications.WithLabelValues(observability.NotificationSkipped).Inc()
		d.log.Debug("Notification skipped, no push token", "title", title)
		return
	}
	msg := domain.PushMessage{Token: token, Title: title, Body: body, Data: data}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		if err := d.gateway.Send(sendCtx, msg); err != nil {
			observability.Notifications.WithLabelValues(observability.NotificationFailed).Inc()
			d.log.Debug("Notification dropped", "error", err)
			return
		}
		observability.Notifications.WithLabelValues(observability.NotificationSent).Inc()
	}()
}

// Wait blocks until every notification already fired has completed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
