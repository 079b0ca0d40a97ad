package chat

import (
	"context"
	"log/slog"
	"time"
)

// Generator is the external generation capability: given a model, prior
// turns, and a new prompt, it returns the generated text or fails.
type Generator interface {
	Generate(ctx context.Context, modelID string, history []Turn, prompt string) (string, error)
}

// Responder drives a prioritized model list, delegating each attempt to a
// Generator and falling back to the next model on rate-limit errors.
// It holds no per-request state; concurrent Respond calls need no
// coordination.
type Responder struct {
	generator Generator
	models    []string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewResponder creates a Responder. models is the priority list, best model
// first, most available last; it must not be empty. timeout bounds each
// individual attempt; zero disables the bound.
func NewResponder(g Generator, models []string, timeout time.Duration, logger *slog.Logger) *Responder {
	if len(models) == 0 {
		panic("chat: Responder requires at least one model")
	}
	return &Responder{
		generator: g,
		models:    models,
		timeout:   timeout,
		logger:    logger,
	}
}

// Respond splits the last message off as the new prompt, normalizes the
// rest, and tries each model in order until one succeeds. Rate-limited
// attempts fall through to the next model; any other failure aborts and is
// returned unchanged. If every model was rate-limited the result is an
// *ExhaustedError wrapping the last attempt's error.
func (r *Responder) Respond(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	prompt := messages[len(messages)-1]
	if prompt.Role != RoleUser {
		return "", ErrPromptRole
	}
	history := Normalize(messages[:len(messages)-1])

	var lastErr error
	for i, model := range r.models {
		text, err := r.generate(ctx, model, history, prompt.Content)
		if err == nil {
			if i > 0 {
				r.logger.Info("model fallback succeeded",
					"model", model,
					"attempt", i+1,
				)
			}
			return text, nil
		}
		if classify(err) != KindRateLimited {
			return "", err
		}
		lastErr = err
		r.logger.Warn("model rate limited, trying next",
			"model", model,
			"error", err,
			"remaining", len(r.models)-i-1,
		)
	}
	return "", &ExhaustedError{Last: lastErr}
}

// generate runs one attempt under the per-attempt timeout.
func (r *Responder) generate(ctx context.Context, model string, history []Turn, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.generator.Generate(ctx, model, history, prompt)
}
