package api

import (
	"chat-sync/errors"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func statusOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrNotLoggedIn), stderrors.Is(err, errors.ErrInvalidToken):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotParticipant):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrRoomNotFound),
		stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrDocumentNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrBlobStoreDisabled):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, errors.ErrRemoteOperation):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondErr hides internal failures behind their status text.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.Log.Error("Request failed", "request_id", middleware.GetReqID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "error", err)
		message = http.StatusText(status)
	}
	respondJSON(w, status, map[string]string{"error": message})
}

func decode(r *http.Request, payload any) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return stderrors.Join(errors.ErrValidation, err)
	}
	return nil
}
