package llm

import (
	"context"
	"strings"
)

// Probe checks that the provider is reachable and the credential works by
// requesting a trivial completion at temperature zero. Returns true when the
// model echoes an acknowledgement.
func Probe(ctx context.Context, client Client) bool {
	resp, err := client.Complete(ctx, Request{
		SystemPrompt: `You are a helpful assistant. Respond with just "OK".`,
		Messages:     []Message{{Role: RoleUser, Content: "Hello"}},
		Temperature:  0,
	})
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(resp.Text), "ok")
}
