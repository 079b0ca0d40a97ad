// Package store owns the thread and message queries.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a thread or message does not exist.
var ErrNotFound = errors.New("not found")

// Thread is a stored conversation.
type Thread struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a stored chat message within a thread.
type Message struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store runs queries against the connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateThread inserts a new thread with the given title.
func (s *Store) CreateThread(ctx context.Context, title string) (Thread, error) {
	thread := Thread{ID: uuid.New(), Title: title}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO threads (id, title) VALUES ($1, $2)
		 RETURNING created_at, updated_at`,
		thread.ID, thread.Title,
	).Scan(&thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return Thread{}, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// ListThreads returns all threads, most recently updated first.
func (s *Store) ListThreads(ctx context.Context) ([]Thread, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, created_at, updated_at
		 FROM threads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// GetThread fetches a single thread by ID.
func (s *Store) GetThread(ctx context.Context, id uuid.UUID) (Thread, error) {
	var t Thread
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, created_at, updated_at FROM threads WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Thread{}, ErrNotFound
	}
	if err != nil {
		return Thread{}, fmt.Errorf("failed to get thread: %w", err)
	}
	return t, nil
}

// RenameThread updates a thread's title.
func (s *Store) RenameThread(ctx context.Context, id uuid.UUID, title string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE threads SET title = $2, updated_at = now() WHERE id = $1`,
		id, title)
	if err != nil {
		return fmt.Errorf("failed to rename thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteThread removes a thread and, via cascade, its messages.
func (s *Store) DeleteThread(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMessages returns a thread's messages in conversation order.
func (s *Store) ListMessages(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, thread_id, role, content, created_at
		 FROM messages WHERE thread_id = $1 ORDER BY created_at`,
		threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// AppendMessage inserts a message and bumps the thread's updated_at.
func (s *Store) AppendMessage(ctx context.Context, threadID uuid.UUID, role, content string) (Message, error) {
	msg := Message{ID: uuid.New(), ThreadID: threadID, Role: role, Content: content}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (id, thread_id, role, content) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE threads SET updated_at = now() WHERE id = $1`, threadID)
	if err != nil {
		return Message{}, fmt.Errorf("failed to touch thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Message{}, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, fmt.Errorf("failed to commit message: %w", err)
	}
	return msg, nil
}
