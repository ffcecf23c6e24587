package assessment

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn in the assessment transcript. Messages are
// immutable once appended.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// TransportMessage is the wire shape sent upstream: role and content only,
// timestamps dropped.
type TransportMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage stamps a message with the local clock. Timestamps are generated
// client-side; the server never rewrites them.
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
