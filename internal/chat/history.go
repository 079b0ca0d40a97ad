package chat

// Message roles as stored by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RoleModel is the provider-facing name for assistant turns.
const RoleModel = "model"

// Message is a single stored chat message, in conversation order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one normalized conversational unit in the provider's format,
// tagged "user" or "model".
type Turn struct {
	Role    string
	Content string
}

// Normalize converts a stored message history into the strictly alternating
// turn sequence the provider accepts:
//   - Messages with empty content are dropped.
//   - Anything before the first user message is dropped (the provider
//     rejects histories that open with the model role).
//   - Consecutive same-role messages collapse to the first of the run.
//
// The input is never mutated. An empty result is valid: it means there is no
// usable history, not an error.
func Normalize(messages []Message) []Turn {
	kept := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		kept = append(kept, m)
	}

	start := -1
	for i, m := range kept {
		if m.Role == RoleUser {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	turns := make([]Turn, 0, len(kept)-start)
	lastRole := ""
	for _, m := range kept[start:] {
		role := RoleUser
		if m.Role == RoleAssistant {
			role = RoleModel
		}
		if role == lastRole {
			continue
		}
		turns = append(turns, Turn{Role: role, Content: m.Content})
		lastRole = role
	}
	return turns
}
