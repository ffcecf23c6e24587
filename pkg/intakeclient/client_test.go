package intakeclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimirror/intake/pkg/assessment"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestSendChatEnvelopeShape(t *testing.T) {
	var captured map[string]any
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"response":       "Tell me more about the pain.",
				"conversationId": "conv-42",
			},
		})
	})

	client := New(srv.URL)
	result, err := client.SendChat(context.Background(), []assessment.TransportMessage{
		{Role: "user", Content: "My head hurts"},
	}, "You are a medical assistant.", "")
	require.NoError(t, err)

	assert.Equal(t, "Tell me more about the pain.", result.Text)
	assert.Equal(t, "conv-42", result.ConversationID)
	assert.Equal(t, "You are a medical assistant.", captured["systemPrompt"])
}

func TestReplyNormalizationPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{
			name: "top-level message wins over everything",
			body: map[string]any{
				"message":  "from message",
				"response": "from response",
				"data":     map[string]any{"message": "from data.message", "response": "from data.response"},
			},
			want: "from message",
		},
		{
			name: "data.message beats response fields",
			body: map[string]any{
				"response": "from response",
				"data":     map[string]any{"message": "from data.message", "response": "from data.response"},
			},
			want: "from data.message",
		},
		{
			name: "response beats data.response",
			body: map[string]any{
				"response": "from response",
				"data":     map[string]any{"response": "from data.response"},
			},
			want: "from response",
		},
		{
			name: "data.response used last",
			body: map[string]any{
				"data": map[string]any{"response": "from data.response"},
			},
			want: "from data.response",
		},
		{
			name: "no recognized field falls back to the default",
			body: map[string]any{"success": true, "data": map[string]any{"conversationId": "x"}},
			want: DefaultReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				respondJSON(w, http.StatusOK, tt.body)
			})
			client := New(srv.URL)
			result, err := client.SendChat(context.Background(), []assessment.TransportMessage{
				{Role: "user", Content: "hello"},
			}, "", "conv-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestSendChatCustomFallback(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	client := New(srv.URL, WithFallbackReply("What symptoms are you experiencing exactly?"))
	result, err := client.SendChat(context.Background(), []assessment.TransportMessage{
		{Role: "user", Content: "hi"},
	}, "", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "What symptoms are you experiencing exactly?", result.Text)
}

func TestSendChatErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       map[string]any
		want       string
		retryAfter int
	}{
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       map[string]any{"success": false, "error": "Too many chat requests", "retryAfter": 60},
			want:       "Too many requests. Please wait a moment and try again.",
			retryAfter: 60,
		},
		{
			name:   "upstream down",
			status: http.StatusServiceUnavailable,
			body:   map[string]any{"success": false, "error": "AI service is temporarily unavailable. Please try again."},
			want:   "Service temporarily unavailable. Please try again later.",
		},
		{
			name:   "server error message passes through",
			status: http.StatusBadRequest,
			body:   map[string]any{"success": false, "error": "Messages array is required"},
			want:   "Messages array is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				respondJSON(w, tt.status, tt.body)
			})
			client := New(srv.URL)
			_, err := client.SendChat(context.Background(), []assessment.TransportMessage{
				{Role: "user", Content: "hi"},
			}, "", "")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.retryAfter, apiErr.RetryAfter)
		})
	}
}

func TestSendChatConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url)
	_, err := client.SendChat(context.Background(), []assessment.TransportMessage{
		{Role: "user", Content: "hi"},
	}, "", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Unable to connect to server. Please check your internet connection.", apiErr.Message)
}

func TestGenerateDiagnosisUnwrapsEnvelope(t *testing.T) {
	diagnosisBody := map[string]any{
		"primaryDiagnosis": "Tension headache",
		"confidence":       72,
		"severity":         "mild",
		"recommendations":  []string{"Rest", "Hydration"},
	}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"wrapped in data", map[string]any{"success": true, "data": diagnosisBody}},
		{"bare object", diagnosisBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/diagnosis", r.URL.Path)
				respondJSON(w, http.StatusOK, tt.body)
			})
			client := New(srv.URL)
			diagnosis, err := client.GenerateDiagnosis(context.Background(), []assessment.TransportMessage{
				{Role: "user", Content: "headache for two days"},
				{Role: "assistant", Content: "how severe?"},
			}, []string{"Head"})
			require.NoError(t, err)
			assert.Equal(t, "Tension headache", diagnosis.PrimaryDiagnosis)
			assert.Equal(t, 72, diagnosis.Confidence)
		})
	}
}

func TestGenerateDiagnosisRejectsIncomplete(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"severity": "mild"},
		})
	})

	client := New(srv.URL)
	_, err := client.GenerateDiagnosis(context.Background(), []assessment.TransportMessage{
		{Role: "user", Content: "headache"},
	}, nil)
	require.Error(t, err)
}

func TestCheckHealth(t *testing.T) {
	healthy := true
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		if healthy {
			respondJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false})
	})

	client := New(srv.URL)
	assert.True(t, client.CheckHealth(context.Background()))

	healthy = false
	assert.False(t, client.CheckHealth(context.Background()))
}

func TestTestConnection(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	client := New(srv.URL)
	status := client.TestConnection(context.Background())
	assert.True(t, status.Connected)
	assert.Empty(t, status.Error)

	down := New("http://127.0.0.1:1")
	status = down.TestConnection(context.Background())
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Error)
}

// A front end consumes only exported packages: the session store feeds the
// client directly, timestamps never reach the wire, and the diagnosis lands
// back on the session.
func TestSessionDrivenConsumerFlow(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var req struct {
				Messages []map[string]any `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotEmpty(t, req.Messages)
			for _, msg := range req.Messages {
				_, hasTimestamp := msg["timestamp"]
				assert.False(t, hasTimestamp)
			}
			respondJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"response": "How long has it hurt?", "conversationId": "conv-7"},
			})
		case "/api/diagnosis":
			respondJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"primaryDiagnosis": "Migraine",
					"confidence":       68,
					"severity":         "moderate",
				},
			})
		default:
			http.NotFound(w, r)
		}
	})

	session := assessment.NewSession()
	session.AddRegion(assessment.RegionRef{ID: "head", Name: "Head"})
	session.StartAssessment()
	session.AppendMessage(assessment.RoleUser, "I have a headache")

	client := New(srv.URL)
	result, err := client.SendChat(context.Background(), session.FormattedForTransport(), "", "")
	require.NoError(t, err)
	session.AppendMessage(assessment.RoleAssistant, result.Text)

	diag, err := client.GenerateDiagnosis(context.Background(), session.FormattedForTransport(), session.RegionNames())
	require.NoError(t, err)
	session.SetDiagnosis(diag)

	assert.True(t, session.HasDiagnosis())
	assert.Equal(t, "Migraine", session.Diagnosis().PrimaryDiagnosis)
}
