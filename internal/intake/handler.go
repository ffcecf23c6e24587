package intake

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/medimirror/intake/pkg/assessment"
	"github.com/medimirror/intake/internal/llm"
	"github.com/medimirror/intake/internal/observability/metrics"
	"github.com/medimirror/intake/pkg/logging"
)

// Handler wires HTTP requests to the intake service.
type Handler struct {
	service *Service
	logger  *logging.Logger
	metrics *metrics.IntakeMetrics
}

// NewHandler creates an intake handler. metrics may be nil.
func NewHandler(service *Service, m *metrics.IntakeMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, metrics: m}
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Messages       []llm.Message `json:"messages"`
	SystemPrompt   string        `json:"systemPrompt,omitempty"`
	ConversationID string        `json:"conversationId,omitempty"`
}

// ChatData is the data payload of a successful chat reply.
type ChatData struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
}

// DiagnosisRequest is the POST /api/diagnosis body. BodyParts is optional;
// the quick-chat flow omits it.
type DiagnosisRequest struct {
	ConversationHistory []llm.Message `json:"conversationHistory"`
	BodyParts           []string      `json:"bodyParts,omitempty"`
}

// DiagnosisData flattens the diagnosis fields alongside request metadata.
type DiagnosisData struct {
	assessment.Diagnosis
	Timestamp string   `json:"timestamp"`
	BodyParts []string `json:"bodyParts"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Covers malformed JSON and wrong-typed fields, e.g. a non-string
		// systemPrompt.
		h.observe(r, http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	h.logger.Info("processing chat request",
		"conversation_id", conversationID,
		"messages", len(req.Messages),
	)

	text, err := h.service.Chat(r.Context(), req.Messages, req.SystemPrompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.observe(r, http.StatusOK)
	writeSuccess(w, http.StatusOK, ChatData{
		Response:       text,
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// Diagnosis handles POST /api/diagnosis.
func (h *Handler) Diagnosis(w http.ResponseWriter, r *http.Request) {
	var req DiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe(r, http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	affected := req.BodyParts
	if len(affected) == 0 {
		affected = []string{assessment.GenericRegionLabel}
	}
	h.logger.Info("generating diagnosis", "body_parts", affected)

	diag, err := h.service.GenerateDiagnosis(r.Context(), req.ConversationHistory, affected)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.observe(r, http.StatusOK)
	writeSuccess(w, http.StatusOK, DiagnosisData{
		Diagnosis: *diag,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		BodyParts: affected,
	})
}

// Health handles GET /api/health: probes the upstream model.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.service.HealthCheck(r.Context()) {
		h.observe(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"status":    "healthy",
			"message":   "AI service is operational",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	h.observe(r, http.StatusServiceUnavailable)
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"success":   false,
		"status":    "unhealthy",
		"error":     "AI service is not responding",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Liveness handles GET /health: process-up only, no upstream probe, no rate
// limit, no auth.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	h.observe(r, status)
	writeError(w, status, messageForError(err))
}

func (h *Handler) observe(r *http.Request, status int) {
	h.metrics.ObserveRequest(r.URL.Path, strconv.Itoa(status))
}
