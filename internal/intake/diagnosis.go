package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medimirror/intake/pkg/assessment"
)

// ErrMalformedOutput means the model's reply did not parse into the required
// diagnosis shape. Recoverable by re-invoking the generator.
var ErrMalformedOutput = errors.New("intake: malformed AI output")

// ErrTranscriptTooShort means the conversation has not reached the hard floor
// for diagnosis generation.
var ErrTranscriptTooShort = errors.New("intake: at least 2 conversation exchanges are required for diagnosis")

// parseDiagnosis turns raw model text into a validated Diagnosis. Models
// sometimes wrap the JSON in code fences despite the prompt; those are
// stripped before parsing, and any leading prose is cut by extracting the
// outermost object.
func parseDiagnosis(raw string) (*assessment.Diagnosis, error) {
	text := stripCodeFence(raw)
	text = extractJSONObject(text)

	var diag assessment.Diagnosis
	if err := json.Unmarshal([]byte(text), &diag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !diag.Valid() {
		return nil, fmt.Errorf("%w: missing primaryDiagnosis or confidence", ErrMalformedOutput)
	}
	return &diag, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func extractJSONObject(text string) string {
	if strings.HasPrefix(text, "{") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
