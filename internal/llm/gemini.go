package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient is the alternative provider behind the same adapter contract,
// selected with LLM_PROVIDER=gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient validates the credential and constructs the client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: GEMINI_API_KEY is not configured")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// ModelID returns the configured model name.
func (c *GeminiClient) ModelID() string {
	return c.model
}

// Complete sends one completion request to Gemini. The system prompt becomes
// the model's system instruction; prior turns become chat history and the
// final turn is sent as the message.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	if len(req.Messages) == 0 {
		return Response{}, errors.New("llm: gemini requires at least one message")
	}
	req = withDefaults(req)

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(req.Temperature)
	model.SetTopP(req.TopP)
	model.SetMaxOutputTokens(int32(req.MaxTokens))

	if strings.TrimSpace(req.SystemPrompt) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
	}

	cs := model.StartChat()
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.Role == RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return Response{}, c.mapError(err)
	}

	if len(resp.Candidates) == 0 {
		return Response{}, ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Response{}, ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return Response{}, ErrEmptyResponse
	}

	out := Response{Text: strings.TrimSpace(text.String())}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func (c *GeminiClient) mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return mapStatus(apiErr.Code, apiErr.Message)
	}
	return ErrConnectivity
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
