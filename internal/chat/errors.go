package chat

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors returned by Respond before any model is attempted.
var (
	ErrNoMessages = errors.New("chat: message list is empty")
	ErrPromptRole = errors.New("chat: last message must have role user")
)

// ErrorKind classifies a failed generation attempt.
type ErrorKind int

const (
	// KindUnknown means the adapter supplied no classification; the
	// orchestrator falls back to inspecting the error message.
	KindUnknown ErrorKind = iota
	// KindRateLimited is a transient capacity error (HTTP 429); the next
	// model in the priority list is tried.
	KindRateLimited
	// KindNonRecoverable covers everything else (auth, malformed input,
	// safety rejection, network fault); the fallback loop aborts.
	KindNonRecoverable
)

// GenerateError is a classified failure from the generation capability.
// Adapters should set Kind from the provider's structured status so the
// orchestrator does not have to guess from message text.
type GenerateError struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every model in the priority list was
// rate-limited. It wraps the last attempt's error for diagnostics.
type ExhaustedError struct {
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all models unavailable: %v", e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// classify decides whether an attempt error is worth retrying on a lesser
// model. A structured kind from the adapter wins; otherwise the 429 status
// signature in the message text is the only recoverable marker.
func classify(err error) ErrorKind {
	var genErr *GenerateError
	if errors.As(err, &genErr) && genErr.Kind != KindUnknown {
		return genErr.Kind
	}
	if strings.Contains(err.Error(), "429") {
		return KindRateLimited
	}
	return KindNonRecoverable
}
