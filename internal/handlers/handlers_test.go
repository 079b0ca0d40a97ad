package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/chat"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/handlers"
	"github.com/ANIRUDDH-VIJAY/Synapse/internal/store"
)

// memStore is an in-memory ThreadStore for handler tests.
type memStore struct {
	threads  map[uuid.UUID]store.Thread
	messages map[uuid.UUID][]store.Message
}

func newMemStore() *memStore {
	return &memStore{
		threads:  make(map[uuid.UUID]store.Thread),
		messages: make(map[uuid.UUID][]store.Message),
	}
}

func (m *memStore) CreateThread(_ context.Context, title string) (store.Thread, error) {
	t := store.Thread{ID: uuid.New(), Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.threads[t.ID] = t
	return t, nil
}

func (m *memStore) ListThreads(_ context.Context) ([]store.Thread, error) {
	var threads []store.Thread
	for _, t := range m.threads {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	return threads, nil
}

func (m *memStore) GetThread(_ context.Context, id uuid.UUID) (store.Thread, error) {
	t, ok := m.threads[id]
	if !ok {
		return store.Thread{}, store.ErrNotFound
	}
	return t, nil
}

func (m *memStore) RenameThread(_ context.Context, id uuid.UUID, title string) error {
	t, ok := m.threads[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Title = title
	m.threads[id] = t
	return nil
}

func (m *memStore) DeleteThread(_ context.Context, id uuid.UUID) error {
	if _, ok := m.threads[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.threads, id)
	delete(m.messages, id)
	return nil
}

func (m *memStore) ListMessages(_ context.Context, threadID uuid.UUID) ([]store.Message, error) {
	return m.messages[threadID], nil
}

func (m *memStore) AppendMessage(_ context.Context, threadID uuid.UUID, role, content string) (store.Message, error) {
	if _, ok := m.threads[threadID]; !ok {
		return store.Message{}, store.ErrNotFound
	}
	msg := store.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	m.messages[threadID] = append(m.messages[threadID], msg)
	return msg, nil
}

// scriptedResponder returns a fixed reply or error and records the history
// it was called with.
type scriptedResponder struct {
	reply   string
	err     error
	history []chat.Message
}

func (s *scriptedResponder) Respond(_ context.Context, messages []chat.Message) (string, error) {
	s.history = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testRouter(st handlers.ThreadStore, rsp handlers.Responder) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handlers.New(st, rsp, logger)

	r := chi.NewRouter()
	r.Route("/api/threads", func(r chi.Router) {
		r.Get("/", h.ListThreads)
		r.Post("/", h.CreateThread)
		r.Route("/{threadID}", func(r chi.Router) {
			r.Get("/", h.GetThread)
			r.Patch("/", h.RenameThread)
			r.Delete("/", h.DeleteThread)
			r.Get("/messages", h.ListMessages)
			r.Post("/messages", h.PostMessage)
		})
	})
	return r
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndListThreads(t *testing.T) {
	server := httptest.NewServer(testRouter(newMemStore(), &scriptedResponder{}))
	defer server.Close()

	resp := postJSON(t, server, "/api/threads", map[string]string{"title": "Go questions"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[store.Thread](t, resp)
	assert.Equal(t, "Go questions", created.Title)
	assert.NotEqual(t, uuid.Nil, created.ID)

	listResp, err := http.Get(server.URL + "/api/threads")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	threads := decode[[]store.Thread](t, listResp)
	require.Len(t, threads, 1)
	assert.Equal(t, created.ID, threads[0].ID)
}

func TestCreateThreadDefaultTitle(t *testing.T) {
	server := httptest.NewServer(testRouter(newMemStore(), &scriptedResponder{}))
	defer server.Close()

	resp := postJSON(t, server, "/api/threads", map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[store.Thread](t, resp)
	assert.Equal(t, "New chat", created.Title)
}

func TestGetThreadNotFound(t *testing.T) {
	server := httptest.NewServer(testRouter(newMemStore(), &scriptedResponder{}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/threads/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/threads/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostMessageGeneratesReply(t *testing.T) {
	st := newMemStore()
	rsp := &scriptedResponder{reply: "generated answer"}
	server := httptest.NewServer(testRouter(st, rsp))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "New chat")
	require.NoError(t, err)

	resp := postJSON(t, server, "/api/threads/"+thread.ID.String()+"/messages",
		map[string]string{"content": "what is a goroutine?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reply := decode[store.Message](t, resp)
	assert.Equal(t, chat.RoleAssistant, reply.Role)
	assert.Equal(t, "generated answer", reply.Content)

	// The responder saw the full history ending with the new prompt.
	require.NotEmpty(t, rsp.history)
	last := rsp.history[len(rsp.history)-1]
	assert.Equal(t, chat.RoleUser, last.Role)
	assert.Equal(t, "what is a goroutine?", last.Content)

	// Both the prompt and the reply are persisted in order.
	stored, err := st.ListMessages(context.Background(), thread.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, chat.RoleUser, stored[0].Role)
	assert.Equal(t, chat.RoleAssistant, stored[1].Role)

	// First exchange auto-titles the thread from the prompt.
	got, err := st.GetThread(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, "what is a goroutine?", got.Title)
}

func TestPostMessageKeepsCustomTitle(t *testing.T) {
	st := newMemStore()
	server := httptest.NewServer(testRouter(st, &scriptedResponder{reply: "ok"}))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "My title")
	require.NoError(t, err)

	resp := postJSON(t, server, "/api/threads/"+thread.ID.String()+"/messages",
		map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	got, err := st.GetThread(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, "My title", got.Title)
}

func TestPostMessageValidation(t *testing.T) {
	st := newMemStore()
	server := httptest.NewServer(testRouter(st, &scriptedResponder{reply: "ok"}))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "New chat")
	require.NoError(t, err)

	resp := postJSON(t, server, "/api/threads/"+thread.ID.String()+"/messages",
		map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, server, "/api/threads/"+uuid.NewString()+"/messages",
		map[string]string{"content": "hi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostMessageModelsBusy(t *testing.T) {
	st := newMemStore()
	rsp := &scriptedResponder{err: &chat.ExhaustedError{Last: errors.New("429 Too Many Requests")}}
	server := httptest.NewServer(testRouter(st, rsp))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "New chat")
	require.NoError(t, err)

	resp := postJSON(t, server, "/api/threads/"+thread.ID.String()+"/messages",
		map[string]string{"content": "hi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPostMessageGenerationFailure(t *testing.T) {
	st := newMemStore()
	rsp := &scriptedResponder{err: errors.New("401 Unauthorized")}
	server := httptest.NewServer(testRouter(st, rsp))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "New chat")
	require.NoError(t, err)

	resp := postJSON(t, server, "/api/threads/"+thread.ID.String()+"/messages",
		map[string]string{"content": "hi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestDeleteThread(t *testing.T) {
	st := newMemStore()
	server := httptest.NewServer(testRouter(st, &scriptedResponder{}))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "to delete")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/threads/"+thread.ID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = st.GetThread(context.Background(), thread.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRenameThread(t *testing.T) {
	st := newMemStore()
	server := httptest.NewServer(testRouter(st, &scriptedResponder{}))
	defer server.Close()

	thread, err := st.CreateThread(context.Background(), "old")
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]string{"title": "new name"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, server.URL+"/api/threads/"+thread.ID.String(), bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	got, err := st.GetThread(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Title)
}

func TestListMessagesNotFound(t *testing.T) {
	server := httptest.NewServer(testRouter(newMemStore(), &scriptedResponder{}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/threads/" + uuid.NewString() + "/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
