// Package handlers contains the HTTP handlers for the thread and message
// API.
package handlers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/chat"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/store"
)

// ThreadStore is the persistence surface the handlers need.
type ThreadStore interface {
	CreateThread(ctx context.Context, title string) (store.Thread, error)
	ListThreads(ctx context.Context) ([]store.Thread, error)
	GetThread(ctx context.Context, id uuid.UUID) (store.Thread, error)
	RenameThread(ctx context.Context, id uuid.UUID, title string) error
	DeleteThread(ctx context.Context, id uuid.UUID) error
	ListMessages(ctx context.Context, threadID uuid.UUID) ([]store.Message, error)
	AppendMessage(ctx context.Context, threadID uuid.UUID, role, content string) (store.Message, error)
}

// Responder produces an assistant reply for a message history.
type Responder interface {
	Respond(ctx context.Context, messages []chat.Message) (string, error)
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	store     ThreadStore
	responder Responder
	logger    *slog.Logger
}

// New creates a new Handlers instance with all dependencies.
func New(store ThreadStore, responder Responder, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:     store,
		responder: responder,
		logger:    logger,
	}
}
