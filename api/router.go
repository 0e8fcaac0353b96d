// Package api exposes the chat engine to UI clients over HTTP and websockets.
package api

import (
	"chat-sync/contract"
	"chat-sync/repositories"
	"chat-sync/services"
	"chat-sync/session"
	"chat-sync/storage"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are shared by every request; services are built per request
// around the session of the caller.
type Dependencies struct {
	Messages repositories.IMessageRepository
	Rooms    repositories.IRoomRepository
	Users    repositories.IUserRepository
	Notifier contract.INotifier
	Pictures *storage.ProfilePictures
	Registry contract.IRegistry
	Issuer   *session.Issuer
	Log      *slog.Logger

	// AllowedOrigins may open live views from a browser, besides the server's own origin.
	AllowedOrigins []string

	HistoryLimit    int
	SearchLimit     int
	WriteTimeout    time.Duration
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration
}

type Handler struct {
	Dependencies
	upgrader websocket.Upgrader
}

func NewRouter(deps Dependencies) http.Handler {
	h := &Handler{
		Dependencies: deps,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin(deps.AllowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(measure)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(h.authenticate)

		api.Put("/users/me", h.handleSaveProfile)
		api.Put("/users/me/push-token", h.handleRefreshPushToken)
		api.Put("/users/me/picture", h.handleUploadPicture)
		api.Delete("/users/me/picture", h.handleDeletePicture)
		api.Get("/users", h.handleSearchUsers)
		api.Get("/users/{userID}/picture", h.handlePictureURL)
		api.Post("/session/signout", h.handleSignOut)

		api.Post("/rooms", h.handleOpenRoom)
		api.Get("/rooms/live", h.handleRoomsLive)
		api.Get("/rooms/{roomID}/messages", h.handleHistory)
		api.Post("/rooms/{roomID}/messages", h.handleSendMessage)
		api.Get("/rooms/{roomID}/live", h.handleMessagesLive)
	})

	return r
}

func (h *Handler) chat(r *http.Request) *services.ChatService {
	sess, _ := session.FromContext(r.Context())
	return services.NewChatService(sess, h.Messages, h.Rooms, h.Users, h.Notifier, h.Log)
}

func (h *Handler) users(r *http.Request) *services.UserService {
	sess, _ := session.FromContext(r.Context())
	return services.NewUserService(sess, h.Users, h.Pictures, h.Registry, h.Log)
}
