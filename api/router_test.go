package api

import (
	"bytes"
	"chat-sync/docstore"
	"chat-sync/domain"
	"chat-sync/mocks"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/session"
	"chat-sync/storage"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	server   *httptest.Server
	issuer   *session.Issuer
	registry *runtime.Registry
	notifier *mocks.MockINotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := docstore.NewStore(db, log)
	issuer := session.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	registry := runtime.NewRegistry()
	notifier := mocks.NewMockINotifier(gomock.NewController(t))

	server := httptest.NewServer(NewRouter(Dependencies{
		Messages:        repositories.NewMessageRepository(store, log),
		Rooms:           repositories.NewRoomRepository(store, log),
		Users:           repositories.NewUserRepository(store, log),
		Notifier:        notifier,
		Pictures:        storage.NewProfilePictures(nil, log, 1024, time.Minute),
		Registry:        registry,
		Issuer:          issuer,
		Log:             log,
		AllowedOrigins:  []string{"https://app.example"},
		HistoryLimit:    50,
		SearchLimit:     20,
		WriteTimeout:    time.Second,
		RestartDelay:    10 * time.Millisecond,
		MaxRestartDelay: 100 * time.Millisecond,
	}))
	t.Cleanup(server.Close)
	return fixture{server: server, issuer: issuer, registry: registry, notifier: notifier}
}

func (f fixture) call(t *testing.T, userID, method, path string, body any) *http.Response {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if userID != "" {
		token, err := f.issuer.Generate(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var value T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&value))
	return value
}

func TestRouter_SendMessageFlow(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.notifier.EXPECT().
		Notify(gomock.Any(), "bob-token", "Alice", "hello", map[string]string{"userId": "alice"}).
		Times(1)

	// Given two profiles and bob's device
	req.Equal(http.StatusOK, f.call(t, "alice", http.MethodPut, "/api/users/me", profileRequest{Username: "Alice"}).StatusCode)
	req.Equal(http.StatusOK, f.call(t, "bob", http.MethodPut, "/api/users/me", profileRequest{Username: "Bob"}).StatusCode)
	req.Equal(http.StatusNoContent, f.call(t, "bob", http.MethodPut, "/api/users/me/push-token", pushTokenRequest{Token: "bob-token"}).StatusCode)

	// When alice opens the room and sends hello
	resp := f.call(t, "alice", http.MethodPost, "/api/rooms", openRoomRequest{UserID: "bob"})
	req.Equal(http.StatusOK, resp.StatusCode)
	room := decodeBody[domain.Room](t, resp)
	req.Equal(domain.RoomID("alice_bob"), room.ID)

	resp = f.call(t, "alice", http.MethodPost, "/api/rooms/alice_bob/messages", sendMessageRequest{Body: " hello "})
	req.Equal(http.StatusCreated, resp.StatusCode)
	req.Equal("hello", decodeBody[domain.Message](t, resp).Body)

	// Then bob reads it back
	resp = f.call(t, "bob", http.MethodGet, "/api/rooms/alice_bob/messages?limit=10", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	history := decodeBody[[]domain.Message](t, resp)
	req.Len(history, 1)
	req.Equal("alice", history[0].SenderID)
}

func TestRouter_ErrorStatuses(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.Equal(http.StatusUnauthorized, f.call(t, "", http.MethodGet, "/api/users?search=ali", nil).StatusCode)
	req.Equal(http.StatusBadRequest, f.call(t, "alice", http.MethodGet, "/api/users?search=al", nil).StatusCode)
	req.Equal(http.StatusBadRequest, f.call(t, "alice", http.MethodPost, "/api/rooms/alice_bob/messages", sendMessageRequest{Body: "  "}).StatusCode)
	req.Equal(http.StatusForbidden, f.call(t, "carol", http.MethodPost, "/api/rooms/alice_bob/messages", sendMessageRequest{Body: "hi"}).StatusCode)
	req.Equal(http.StatusBadRequest, f.call(t, "alice", http.MethodGet, "/api/rooms/alice_bob/messages?limit=-1", nil).StatusCode)
	req.Equal(http.StatusServiceUnavailable, f.call(t, "alice", http.MethodGet, "/api/users/bob/picture", nil).StatusCode)
	req.Equal(http.StatusServiceUnavailable, f.call(t, "alice", http.MethodDelete, "/api/users/me/picture", nil).StatusCode)

	resp := f.call(t, "alice", http.MethodGet, "/health", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestRouter_LiveMessagesUntilSignOut(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	req.Equal(http.StatusOK, f.call(t, "bob", http.MethodPut, "/api/users/me", profileRequest{Username: "Bob"}).StatusCode)
	req.Equal(http.StatusOK, f.call(t, "bob", http.MethodPost, "/api/rooms", openRoomRequest{UserID: "alice"}).StatusCode)

	// Given bob watching the room over a websocket
	token, err := f.issuer.Generate("bob")
	req.NoError(err)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/rooms/alice_bob/live?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame workers.Frame[domain.Message]
	req.NoError(conn.ReadJSON(&frame))
	req.Equal("messages", frame.Kind)
	req.Empty(frame.Items)

	// When alice sends a message, bob's view receives it at the head
	req.Equal(http.StatusCreated, f.call(t, "alice", http.MethodPost, "/api/rooms/alice_bob/messages", sendMessageRequest{Body: "hey"}).StatusCode)
	req.NoError(conn.ReadJSON(&frame))
	req.Len(frame.Items, 1)
	req.Equal("hey", frame.Items[0].Body)
	req.True(frame.Update.NewHead)
	req.Eventually(func() bool { return f.registry.Count("bob") == 1 }, time.Second, 10*time.Millisecond)

	// When bob signs out, the live view is closed by the server
	req.Equal(http.StatusNoContent, f.call(t, "bob", http.MethodPost, "/api/session/signout", nil).StatusCode)
	_, _, err = conn.ReadMessage()
	req.Error(err)
	req.Eventually(func() bool { return f.registry.Count("bob") == 0 }, time.Second, 10*time.Millisecond)
}

func TestRouter_LiveRefusesOutsiders(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	token, err := f.issuer.Generate("carol")
	req.NoError(err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/rooms/alice_bob/live?access_token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.Error(err)
	req.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestRouter_LiveChecksOrigin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	token, err := f.issuer.Generate("bob")
	req.NoError(err)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/rooms/live?access_token=" + token

	// A foreign page cannot reuse a leaked token
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	req.Error(err)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	// The configured front end can
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://app.example"}})
	req.NoError(err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame workers.Frame[domain.Room]
	req.NoError(conn.ReadJSON(&frame))
	req.Equal("rooms", frame.Kind)
	req.NoError(conn.Close())
}
