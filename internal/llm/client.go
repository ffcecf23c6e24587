// Package llm wraps the outbound call to the hosted language-model provider.
// Providers are interchangeable behind Client; error conditions map onto the
// typed errors in errors.go so callers never see provider-specific failures.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fixed sampling parameters for every completion. Only the temperature varies
// between call sites (chat vs. diagnosis).
const (
	DefaultMaxTokens = 2048
	DefaultTopP      = 0.9

	ChatTemperature      = 0.7
	DiagnosisTemperature = 0.3
)

// Message is one chat turn sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request. SystemPrompt, when non-empty, is
// prepended as a distinguished leading system turn.
type Request struct {
	SystemPrompt string
	Messages     []Message
	Temperature  float32
	MaxTokens    int
	TopP         float32
}

// Usage reports provider token accounting when available.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is the normalized provider reply.
type Response struct {
	Text  string
	Usage Usage
}

// Client is the adapter to the hosted model. Implementations perform exactly
// one outbound attempt per call; retry policy belongs to callers.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	ModelID() string
}

// withDefaults fills the fixed sampling parameters on a request.
func withDefaults(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.TopP <= 0 {
		req.TopP = DefaultTopP
	}
	return req
}

// prepended returns the message list with the system prompt as leading turn.
func prepended(req Request) []Message {
	if req.SystemPrompt == "" {
		return req.Messages
	}
	out := make([]Message, 0, len(req.Messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: req.SystemPrompt})
	return append(out, req.Messages...)
}
