package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/domain"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/store"
)

// ListThreads returns all threads, most recently active first.
func (h *Handlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.store.ListThreads(r.Context())
	if err != nil {
		h.logger.Error("failed to list threads", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list threads")
		return
	}
	if threads == nil {
		threads = []store.Thread{}
	}
	h.respondJSON(w, http.StatusOK, threads)
}

// CreateThread creates a new, empty thread. The title is optional; untitled
// threads are renamed from their first prompt.
func (h *Handlers) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	title := req.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	thread, err := h.store.CreateThread(r.Context(), title)
	if err != nil {
		h.logger.Error("failed to create thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create thread")
		return
	}
	h.respondJSON(w, http.StatusCreated, thread)
}

// GetThread returns a single thread.
func (h *Handlers) GetThread(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	thread, err := h.store.GetThread(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get thread")
		return
	}
	h.respondJSON(w, http.StatusOK, thread)
}

// RenameThread updates a thread's title.
func (h *Handlers) RenameThread(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		h.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	err := h.store.RenameThread(r.Context(), id, req.Title)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to rename thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to rename thread")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteThread removes a thread and its messages.
func (h *Handlers) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteThread(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete thread")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// threadID parses the threadID URL parameter, writing a 400 on failure.
func (h *Handlers) threadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "threadID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid thread id")
		return uuid.Nil, false
	}
	return id, true
}
