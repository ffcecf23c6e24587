// Package intakeclient is a Go consumer for the intake API. It keeps the
// tolerant reply normalization the deployed web client depends on, so it can
// talk to older backend builds that used different response field names.
package intakeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medimirror/intake/pkg/assessment"
)

// DefaultReply is returned when the backend reply carries none of the
// recognized text fields.
const DefaultReply = "I'm here and listening."

const defaultTimeout = 30 * time.Second

// APIError is a backend rejection translated to a user-presentable message.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string { return e.Message }

// Client talks to an intake API server.
type Client struct {
	baseURL  string
	http     *http.Client
	fallback string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithFallbackReply overrides the text returned when no reply field is found.
func WithFallbackReply(text string) Option {
	return func(c *Client) { c.fallback = text }
}

// New creates a Client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		fallback: DefaultReply,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatResult is a normalized chat reply.
type ChatResult struct {
	Text           string
	ConversationID string
}

// SendChat posts the transcript and returns the assistant reply. The reply
// text is extracted by checking message, data.message, response and
// data.response in that order; when all four are absent the configured
// fallback text is returned. The chain exists for compatibility with older
// backend builds and must keep its order.
func (c *Client) SendChat(ctx context.Context, messages []assessment.TransportMessage, systemPrompt, conversationID string) (*ChatResult, error) {
	payload := map[string]any{
		"messages":       messages,
		"systemPrompt":   systemPrompt,
		"conversationId": conversationID,
	}

	raw, err := c.post(ctx, "/api/chat", payload)
	if err != nil {
		return nil, err
	}

	return &ChatResult{
		Text:           extractReply(raw, c.fallback),
		ConversationID: extractConversationID(raw, conversationID),
	}, nil
}

// GenerateDiagnosis posts the full transcript and selected regions and
// returns the structured assessment. The result may arrive wrapped in a data
// envelope or as a bare object depending on the backend build.
func (c *Client) GenerateDiagnosis(ctx context.Context, history []assessment.TransportMessage, regionNames []string) (*assessment.Diagnosis, error) {
	payload := map[string]any{
		"conversationHistory": history,
		"bodyParts":           regionNames,
	}

	raw, err := c.post(ctx, "/api/diagnosis", payload)
	if err != nil {
		return nil, err
	}

	body := raw
	if inner, ok := raw["data"]; ok {
		if m, ok := inner.(map[string]any); ok {
			body = m
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("re-encode diagnosis: %w", err)
	}
	var diagnosis assessment.Diagnosis
	if err := json.Unmarshal(encoded, &diagnosis); err != nil {
		return nil, fmt.Errorf("decode diagnosis: %w", err)
	}
	if !diagnosis.Valid() {
		return nil, fmt.Errorf("diagnosis response missing required fields")
	}
	return &diagnosis, nil
}

// CheckHealth reports whether the backend and its model upstream are healthy.
func (c *Client) CheckHealth(ctx context.Context) bool {
	raw, err := c.get(ctx, "/api/health")
	if err != nil {
		return false
	}
	success, _ := raw["success"].(bool)
	return success
}

// ConnectionStatus is the result of a liveness probe.
type ConnectionStatus struct {
	Connected bool
	Error     string
}

// TestConnection probes the unauthenticated liveness endpoint.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	if _, err := c.get(ctx, "/health"); err != nil {
		return ConnectionStatus{Connected: false, Error: err.Error()}
	}
	return ConnectionStatus{Connected: true}
}

func (c *Client) post(ctx context.Context, path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: "Unable to connect to server. Please check your internet connection."}
	}
	defer resp.Body.Close()

	raw := map[string]any{}
	if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
		// Tolerate non-JSON bodies on errors; the status drives the message.
		_ = json.Unmarshal(data, &raw)
	}

	if resp.StatusCode >= 400 {
		return nil, apiErrorFrom(resp.StatusCode, raw)
	}
	return raw, nil
}

func apiErrorFrom(status int, body map[string]any) *APIError {
	apiErr := &APIError{StatusCode: status}
	if retry, ok := body["retryAfter"].(float64); ok {
		apiErr.RetryAfter = int(retry)
	}

	switch {
	case status == http.StatusTooManyRequests:
		apiErr.Message = "Too many requests. Please wait a moment and try again."
	case status == http.StatusServiceUnavailable:
		apiErr.Message = "Service temporarily unavailable. Please try again later."
	default:
		if msg, ok := body["error"].(string); ok && msg != "" {
			apiErr.Message = msg
		} else {
			apiErr.Message = fmt.Sprintf("Request failed with status %d", status)
		}
	}
	return apiErr
}

// extractReply walks the documented field precedence. Older backend builds
// answered with {message} or {response} at the top level; current ones wrap
// the text under data.
func extractReply(raw map[string]any, fallback string) string {
	if text := stringField(raw, "message"); text != "" {
		return text
	}
	if data, ok := raw["data"].(map[string]any); ok {
		if text := stringField(data, "message"); text != "" {
			return text
		}
	}
	if text := stringField(raw, "response"); text != "" {
		return text
	}
	if data, ok := raw["data"].(map[string]any); ok {
		if text := stringField(data, "response"); text != "" {
			return text
		}
	}
	return fallback
}

func extractConversationID(raw map[string]any, requested string) string {
	if data, ok := raw["data"].(map[string]any); ok {
		if id := stringField(data, "conversationId"); id != "" {
			return id
		}
	}
	if id := stringField(raw, "conversationId"); id != "" {
		return id
	}
	return requested
}

func stringField(m map[string]any, key string) string {
	text, _ := m[key].(string)
	return text
}
