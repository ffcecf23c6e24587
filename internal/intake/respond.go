package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medimirror/intake/internal/llm"
)

// envelope is the uniform response wrapper: {success, data} on the happy
// path, {success:false, error, retryAfter?} on failure.
type envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForError maps the error taxonomy onto HTTP statuses. Validation is
// caught at the boundary; everything else bubbled up unchanged from the
// service and adapter layers.
func statusForError(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, ErrTranscriptTooShort):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrUpstreamUnavailable), errors.Is(err, llm.ErrConnectivity):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrEmptyResponse), errors.Is(err, ErrMalformedOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageForError is what the client sees. Internal detail stays in the logs.
func messageForError(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, ErrTranscriptTooShort):
		return "At least 2 conversation exchanges are required for diagnosis"
	case errors.Is(err, llm.ErrInvalidCredential):
		return "Invalid API token. Please check the server configuration."
	case errors.Is(err, llm.ErrRateLimited):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return "AI service is temporarily unavailable. Please try again."
	case errors.Is(err, llm.ErrConnectivity):
		return "Unable to reach AI service. Please check your connection."
	case errors.Is(err, llm.ErrEmptyResponse):
		return "No response received from AI"
	case errors.Is(err, ErrMalformedOutput):
		return "Unable to generate structured diagnosis. Please try again."
	default:
		return "An unexpected error occurred"
	}
}
