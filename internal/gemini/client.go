// Package gemini adapts the Google generative-language API to the chat
// package's Generator interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/ANIRUDDH-VIJAY/Synapse/internal/chat"
)

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	client *genai.Client
}

// New creates a Gemini client authenticated with an API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: client}, nil
}

// Generate creates a fresh chat session seeded with the prior turns and
// sends the prompt. Sessions are not reused across attempts; each model
// attempt is independent.
func (c *Client) Generate(ctx context.Context, modelID string, history []chat.Turn, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		contents = append(contents, genai.NewContentFromText(t.Content, genai.Role(t.Role)))
	}

	session, err := c.client.Chats.Create(ctx, modelID, nil, contents)
	if err != nil {
		return "", wrap(modelID, err)
	}

	resp, err := session.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", wrap(modelID, err)
	}

	text := resp.Text()
	if text == "" {
		return "", &chat.GenerateError{
			Kind:  chat.KindNonRecoverable,
			Model: modelID,
			Err:   errors.New("empty response from model"),
		}
	}
	return text, nil
}

// wrap tags the error with a classification taken from the API's HTTP
// status. Errors without a structured status keep KindUnknown and leave
// classification to the caller.
func wrap(modelID string, err error) error {
	kind := chat.KindUnknown
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			kind = chat.KindRateLimited
		} else {
			kind = chat.KindNonRecoverable
		}
	}
	return &chat.GenerateError{Kind: kind, Model: modelID, Err: err}
}
