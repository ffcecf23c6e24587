package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medimirror/intake/pkg/logging"
)

// DefaultGitHubBaseURL is the GitHub Models chat-completions endpoint. It is
// OpenAI-compatible, so the go-openai client drives it directly.
const DefaultGitHubBaseURL = "https://models.inference.ai.azure.com"

// GitHubConfig configures the GitHub Models client.
type GitHubConfig struct {
	Token   string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GitHubClient calls the GitHub Models inference endpoint.
type GitHubClient struct {
	client *openai.Client
	model  string
	logger *logging.Logger
}

// NewGitHubClient validates the credential and constructs the client.
// A missing token is a startup-time configuration error.
func NewGitHubClient(cfg GitHubConfig, logger *logging.Logger) (*GitHubClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("llm: GITHUB_TOKEN is not configured")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGitHubBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	oc := openai.DefaultConfig(cfg.Token)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &GitHubClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// ModelID returns the configured model name.
func (c *GitHubClient) ModelID() string {
	return c.model
}

// Complete sends one chat-completion request. Exactly one attempt is made;
// provider failures come back as the typed errors from errors.go.
func (c *GitHubClient) Complete(ctx context.Context, req Request) (Response, error) {
	req = withDefaults(req)

	msgs := prepended(req)
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		switch role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			role = RoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	// go-openai marshals temperature with omitempty, so a plain 0 would
	// fall back to the provider default instead of greedy sampling. The
	// smallest non-zero float keeps an explicit temperature on the wire.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            c.model,
		Messages:         oaMsgs,
		Temperature:      temperature,
		MaxTokens:        req.MaxTokens,
		TopP:             req.TopP,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	})
	if err != nil {
		return Response{}, c.mapError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Response{}, ErrEmptyResponse
	}

	return Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *GitHubClient) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		c.logger.Error("github models API error",
			"status", apiErr.HTTPStatusCode,
			"message", apiErr.Message,
		)
		return mapStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		c.logger.Error("github models request error",
			"status", reqErr.HTTPStatusCode,
			"error", reqErr.Err,
		)
		return mapStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}

	// No HTTP response at all: transport failure, DNS, timeout.
	c.logger.Error("github models unreachable", "error", err)
	return ErrConnectivity
}
