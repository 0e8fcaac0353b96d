package api

import (
	"chat-sync/domain"
	"chat-sync/observability"
	"chat-sync/projection"
	"chat-sync/repositories"
	"chat-sync/runtime/workers"
	"chat-sync/session"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	liveRooms    = "rooms"
	liveMessages = "messages"
)

func (h *Handler) handleRoomsLive(w http.ResponseWriter, r *http.Request) {
	chat := h.chat(r)
	serveLive(h, w, r, liveRooms, chat.WatchRooms, projection.NewRoomTimeline)
}

func (h *Handler) handleMessagesLive(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(chi.URLParam(r, "roomID"))
	chat := h.chat(r)
	if err := chat.Authorize(roomID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	serveLive(h, w, r, liveMessages, func(ctx context.Context) (*repositories.Subscription[domain.Message], error) {
		return chat.WatchMessages(ctx, roomID)
	}, projection.NewMessageTimeline)
}

// serveLive streams one supervised live view over a websocket until the client
// leaves, the user signs out or the server shuts down.
func serveLive[T any](h *Handler, w http.ResponseWriter, r *http.Request, kind string,
	subscribe workers.SubscribeFunc[T], newTimeline func() *projection.Timeline[T]) {
	sess, _ := session.FromContext(r.Context())
	userID := sess.CurrentUserID()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	release := h.Registry.Track(userID, cancel)
	defer release()
	sess.OnSignOut(cancel)

	// The client only talks to close; a read error ends the view.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	publish := func(ctx context.Context, frame workers.Frame[T]) error {
		_ = conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
		return conn.WriteJSON(frame)
	}
	view := workers.NewLiveView(kind, subscribe, publish, newTimeline, h.Log)
	workers.NewSupervisor(h.Log,
		workers.WithRestartDelay(h.RestartDelay, h.MaxRestartDelay),
		workers.WithRestartHook(func(string) { observability.WatchRestarts.WithLabelValues(kind).Inc() }),
	).Add(view).Run(ctx)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	h.Log.Debug("Live view closed", "kind", kind, "user", userID)
}
