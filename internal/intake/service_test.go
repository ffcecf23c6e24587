package intake

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimirror/intake/internal/llm"
	"github.com/medimirror/intake/internal/observability/metrics"
)

type stubLLM struct {
	resp llm.Response
	err  error
	last llm.Request
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	s.last = req
	return s.resp, s.err
}

func (s *stubLLM) ModelID() string { return "gpt-4o" }

func newTestService(stub *stubLLM) *Service {
	m := metrics.NewIntakeMetrics(prometheus.NewRegistry())
	return NewService(stub, ServiceConfig{}, m, nil)
}

func TestChatShapesRequest(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: "How long has the pain lasted?"}}
	svc := newTestService(stub)

	text, err := svc.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "I have a headache."}},
		"You are a medical assistant.")
	require.NoError(t, err)
	assert.Equal(t, "How long has the pain lasted?", text)

	assert.Equal(t, "You are a medical assistant.", stub.last.SystemPrompt)
	assert.InDelta(t, llm.ChatTemperature, stub.last.Temperature, 0.001)
	assert.Equal(t, llm.DefaultMaxTokens, stub.last.MaxTokens)
	require.Len(t, stub.last.Messages, 1)
}

func TestConfiguredMaxOutputTokensReachesRequest(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: `{"primaryDiagnosis":"Flu","confidence":80}`}}
	m := metrics.NewIntakeMetrics(prometheus.NewRegistry())
	svc := NewService(stub, ServiceConfig{MaxOutputTokens: 512}, m, nil)

	_, err := svc.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}}, "")
	require.NoError(t, err)
	assert.Equal(t, 512, stub.last.MaxTokens)

	_, err = svc.GenerateDiagnosis(context.Background(), twoTurns(), nil)
	require.NoError(t, err)
	assert.Equal(t, 512, stub.last.MaxTokens)
}

func TestChatRejectsInvalidTranscriptBeforeCall(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: "should never be reached"}}
	svc := newTestService(stub)

	_, err := svc.Chat(context.Background(), nil, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, stub.last.Messages, "no upstream call on validation failure")
}

func TestChatPropagatesAdapterError(t *testing.T) {
	stub := &stubLLM{err: llm.ErrRateLimited}
	svc := newTestService(stub)

	_, err := svc.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}}, "")
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func twoTurns() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleUser, Content: "I have a fever and a cough."},
		{Role: llm.RoleAssistant, Content: "How high is the fever?"},
	}
}

func TestGenerateDiagnosisHappyPath(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: "```json\n{\"primaryDiagnosis\":\"Flu\",\"confidence\":80}\n```"}}
	svc := newTestService(stub)

	diag, err := svc.GenerateDiagnosis(context.Background(), twoTurns(), []string{"Chest"})
	require.NoError(t, err)
	assert.Equal(t, "Flu", diag.PrimaryDiagnosis)
	assert.Equal(t, 80, diag.Confidence)

	assert.InDelta(t, llm.DiagnosisTemperature, stub.last.Temperature, 0.001)
	assert.Contains(t, stub.last.SystemPrompt, "ONLY with valid JSON")
	assert.Contains(t, stub.last.SystemPrompt, "affected body parts: Chest")
}

func TestGenerateDiagnosisDefaultsRegions(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: `{"primaryDiagnosis":"Flu","confidence":80}`}}
	svc := newTestService(stub)

	_, err := svc.GenerateDiagnosis(context.Background(), twoTurns(), nil)
	require.NoError(t, err)
	assert.Contains(t, stub.last.SystemPrompt, "General symptoms")
}

func TestGenerateDiagnosisMinimumTurns(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: `{"primaryDiagnosis":"Flu","confidence":80}`}}
	svc := newTestService(stub)

	_, err := svc.GenerateDiagnosis(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}}, nil)
	assert.ErrorIs(t, err, ErrTranscriptTooShort)
	assert.Empty(t, stub.last.Messages, "no upstream call below the floor")
}

func TestGenerateDiagnosisMalformedOutput(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: `{"primaryDiagnosis":"Flu"}`}}
	svc := newTestService(stub)

	_, err := svc.GenerateDiagnosis(context.Background(), twoTurns(), nil)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestGenerateDiagnosisRespectsConfiguredFloor(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: `{"primaryDiagnosis":"Flu","confidence":80}`}}
	m := metrics.NewIntakeMetrics(prometheus.NewRegistry())
	svc := NewService(stub, ServiceConfig{DiagnosisMinTurns: 4}, m, nil)

	_, err := svc.GenerateDiagnosis(context.Background(), twoTurns(), nil)
	assert.ErrorIs(t, err, ErrTranscriptTooShort)
}

func TestHealthCheck(t *testing.T) {
	healthy := &stubLLM{resp: llm.Response{Text: "OK"}}
	assert.True(t, newTestService(healthy).HealthCheck(context.Background()))

	down := &stubLLM{err: llm.ErrConnectivity}
	assert.False(t, newTestService(down).HealthCheck(context.Background()))
}

func TestChatLongContentRejected(t *testing.T) {
	stub := &stubLLM{resp: llm.Response{Text: "nope"}}
	svc := newTestService(stub)

	_, err := svc.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: strings.Repeat("x", svc.MaxMessageLength()+1)}}, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
