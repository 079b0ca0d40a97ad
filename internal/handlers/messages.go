package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/chat"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/domain"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/store"
)

// ListMessages returns a thread's messages in conversation order.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetThread(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "thread not found")
			return
		}
		h.logger.Error("failed to get thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	messages, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	h.respondJSON(w, http.StatusOK, messages)
}

// PostMessage appends a user prompt to a thread, generates the assistant
// reply over the full thread history, persists it, and returns it.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.threadID(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		h.respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	thread, err := h.store.GetThread(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get thread", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	if _, err := h.store.AppendMessage(ctx, id, chat.RoleUser, req.Content); err != nil {
		h.logger.Error("failed to store prompt", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	stored, err := h.store.ListMessages(ctx, id)
	if err != nil {
		h.logger.Error("failed to load history", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	history := make([]chat.Message, len(stored))
	for i, m := range stored {
		history[i] = chat.Message{Role: m.Role, Content: m.Content}
	}

	text, err := h.responder.Respond(ctx, history)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}

	reply, err := h.store.AppendMessage(ctx, id, chat.RoleAssistant, text)
	if err != nil {
		h.logger.Error("failed to store reply", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store reply")
		return
	}

	// First exchange in an untitled thread names it after the prompt.
	if len(stored) == 1 && thread.Title == domain.DefaultTitle {
		if err := h.store.RenameThread(ctx, id, domain.DeriveTitle(req.Content)); err != nil {
			h.logger.Warn("failed to auto-title thread", "thread", id, "error", err)
		}
	}

	h.respondJSON(w, http.StatusCreated, reply)
}

// respondGenerationError maps orchestrator failures to HTTP statuses:
// exhausted fallback list → 503, invalid input → 400, anything else → 502.
func (h *Handlers) respondGenerationError(w http.ResponseWriter, err error) {
	var exhausted *chat.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		h.logger.Warn("all models unavailable", "error", err)
		h.respondError(w, http.StatusServiceUnavailable, "all models are busy, try again later")
	case errors.Is(err, chat.ErrNoMessages), errors.Is(err, chat.ErrPromptRole):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("generation failed", "error", err)
		h.respondError(w, http.StatusBadGateway, "failed to generate a reply")
	}
}
