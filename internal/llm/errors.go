package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Typed provider failures. No retry happens at this layer; every error is
// surfaced for the caller to decide whether to retry or display.
var (
	// ErrInvalidCredential means the configured API token was rejected.
	// This is a configuration error, not user-recoverable.
	ErrInvalidCredential = errors.New("llm: invalid API credential")

	// ErrRateLimited means the provider throttled us; retry later.
	ErrRateLimited = errors.New("llm: provider rate limit exceeded")

	// ErrUpstreamUnavailable means the provider failed server-side.
	ErrUpstreamUnavailable = errors.New("llm: provider temporarily unavailable")

	// ErrConnectivity means no response was received at all.
	ErrConnectivity = errors.New("llm: unable to reach provider")

	// ErrEmptyResponse means the provider answered without completion content.
	ErrEmptyResponse = errors.New("llm: provider returned no completion content")
)

// mapStatus converts a provider HTTP status into the domain error taxonomy.
// Unlisted statuses keep their detail so the boundary can report them.
func mapStatus(status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrInvalidCredential
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= http.StatusInternalServerError:
		return ErrUpstreamUnavailable
	default:
		return fmt.Errorf("llm: provider error (status %d): %s", status, detail)
	}
}
