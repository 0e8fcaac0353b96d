package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type profileRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var payload profileRequest
	if err := decode(r, &payload); err != nil {
		h.respondErr(w, r, err)
		return
	}
	user, err := h.users(r).SaveProfile(r.Context(), payload.Username, payload.Phone)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) handleRefreshPushToken(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenRequest
	if err := decode(r, &payload); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.users(r).RefreshPushToken(r.Context(), payload.Token); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users(r).SearchUsers(r.Context(), r.URL.Query().Get("search"), h.SearchLimit)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	mime, err := h.users(r).UploadPicture(r.Context(), r.Body)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"contentType": string(mime)})
}

func (h *Handler) handlePictureURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.users(r).PictureURL(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) handleDeletePicture(w http.ResponseWriter, r *http.Request) {
	if err := h.users(r).DeletePicture(r.Context()); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.users(r).SignOut(r.Context()); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
