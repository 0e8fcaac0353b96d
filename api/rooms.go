package api

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type openRoomRequest struct {
	UserID string `json:"userId"`
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handler) handleOpenRoom(w http.ResponseWriter, r *http.Request) {
	var payload openRoomRequest
	if err := decode(r, &payload); err != nil {
		h.respondErr(w, r, err)
		return
	}
	room, err := h.chat(r).OpenRoom(r.Context(), payload.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := h.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondErr(w, r, fmt.Errorf("%w: limit must be a positive integer", errors.ErrValidation))
			return
		}
		limit = min(n, h.HistoryLimit)
	}
	messages, err := h.chat(r).History(r.Context(), domain.RoomID(chi.URLParam(r, "roomID")), limit)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendMessageRequest
	if err := decode(r, &payload); err != nil {
		h.respondErr(w, r, err)
		return
	}
	msg, err := h.chat(r).SendMessage(r.Context(), domain.RoomID(chi.URLParam(r, "roomID")), payload.Body)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}
