package intake

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medimirror/intake/pkg/assessment"
	"github.com/medimirror/intake/internal/llm"
	"github.com/medimirror/intake/internal/observability/metrics"
	"github.com/medimirror/intake/pkg/logging"
)

var intakeTracer = otel.Tracer("medimirror.internal.intake")

// ServiceConfig tunes the intake service.
type ServiceConfig struct {
	// MaxMessageLength caps each message's content, enforced before any
	// outbound call.
	MaxMessageLength int
	// DiagnosisMinTurns is the server-side hard floor on transcript length
	// for diagnosis generation. Client flows enforce stricter floors.
	DiagnosisMinTurns int
	// MaxOutputTokens caps the completion length on every upstream call.
	MaxOutputTokens int
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = 1000
	}
	if c.DiagnosisMinTurns <= 0 {
		c.DiagnosisMinTurns = 2
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = llm.DefaultMaxTokens
	}
	return c
}

// Service is the proxy layer between the HTTP boundary and the model
// adapter. It shapes requests and parses diagnosis output; it adds no retry
// semantics, and adapter errors propagate unchanged.
type Service struct {
	client  llm.Client
	cfg     ServiceConfig
	logger  *logging.Logger
	metrics *metrics.IntakeMetrics
}

// NewService creates the intake service. metrics may be nil.
func NewService(client llm.Client, cfg ServiceConfig, m *metrics.IntakeMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:  client,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		metrics: m,
	}
}

// MaxMessageLength exposes the configured content cap for the boundary.
func (s *Service) MaxMessageLength() int {
	return s.cfg.MaxMessageLength
}

// Chat validates the transcript and forwards it upstream with the system
// prompt prepended as the leading turn. One attempt; the raw provider text
// comes back untouched.
func (s *Service) Chat(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	if err := ValidateMessages(messages, s.cfg.MaxMessageLength); err != nil {
		return "", err
	}

	resp, err := s.complete(ctx, "chat", llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		Temperature:  llm.ChatTemperature,
		MaxTokens:    s.cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateDiagnosis asks the model for the strict-JSON assessment of the
// conversation. The low temperature keeps the output reproducible rather
// than creative. Fails with ErrMalformedOutput when the reply does not parse
// into a valid Diagnosis.
func (s *Service) GenerateDiagnosis(ctx context.Context, history []llm.Message, regions []string) (*assessment.Diagnosis, error) {
	if len(history) < s.cfg.DiagnosisMinTurns {
		return nil, ErrTranscriptTooShort
	}
	if err := ValidateMessages(history, s.cfg.MaxMessageLength); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		regions = []string{assessment.GenericRegionLabel}
	}

	resp, err := s.complete(ctx, "diagnosis", llm.Request{
		SystemPrompt: diagnosisSystemPrompt(regions),
		Messages:     history,
		Temperature:  llm.DiagnosisTemperature,
		MaxTokens:    s.cfg.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	diag, err := parseDiagnosis(resp.Text)
	if err != nil {
		s.logger.Error("diagnosis output did not parse",
			"model", s.client.ModelID(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("diagnosis generated",
		"model", s.client.ModelID(),
		"primary", diag.PrimaryDiagnosis,
		"confidence", diag.Confidence,
		"severity", diag.Severity,
	)
	return diag, nil
}

// HealthCheck probes the upstream provider.
func (s *Service) HealthCheck(ctx context.Context) bool {
	start := time.Now()
	healthy := llm.Probe(ctx, s.client)
	status := "ok"
	if !healthy {
		status = "error"
	}
	s.metrics.ObserveLLMCall(s.client.ModelID(), "health", status, time.Since(start).Seconds())
	return healthy
}

func (s *Service) complete(ctx context.Context, purpose string, req llm.Request) (llm.Response, error) {
	ctx, span := intakeTracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("medimirror.llm.purpose", purpose),
		attribute.String("medimirror.llm.model", s.client.ModelID()),
	))
	defer span.End()

	start := time.Now()
	resp, err := s.client.Complete(ctx, req)
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveLLMCall(s.client.ModelID(), purpose, status, latency.Seconds())
	s.metrics.ObserveTokens(s.client.ModelID(), resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)

	if span.IsRecording() {
		span.SetAttributes(
			attribute.Float64("medimirror.llm.latency_ms", float64(latency.Milliseconds())),
			attribute.Int("medimirror.llm.total_tokens", resp.Usage.TotalTokens),
		)
	}

	if err != nil {
		s.logger.Error("upstream completion failed",
			"model", s.client.ModelID(),
			"purpose", purpose,
			"error", err,
		)
		return llm.Response{}, err
	}
	return resp, nil
}
