package intake

import (
	"fmt"

	"github.com/medimirror/intake/internal/llm"
)

// ValidationError is a client-input failure detected at the boundary, before
// any outbound call. It maps to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidateMessages guards an outbound transcript: the list must be non-empty,
// every message needs a role and content, and no content may exceed maxLen.
// A message of exactly maxLen passes.
func ValidateMessages(messages []llm.Message, maxLen int) error {
	if len(messages) == 0 {
		return &ValidationError{Reason: "Messages array is required and must not be empty"}
	}
	for _, msg := range messages {
		if msg.Role == "" || msg.Content == "" {
			return &ValidationError{Reason: "Each message must have role and content"}
		}
		if len(msg.Content) > maxLen {
			return validationErrorf("Message content exceeds maximum length of %d characters", maxLen)
		}
	}
	return nil
}
