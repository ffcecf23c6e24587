package intake

import (
	"fmt"
	"strings"
)

// diagnosisSystemPrompt builds the fixed-schema instruction for the final
// diagnosis call. The schema is enforced by prompt text only; the parser in
// diagnosis.go is the backstop for models that ignore it.
func diagnosisSystemPrompt(regions []string) string {
	return fmt.Sprintf(`You are an expert medical AI assistant specialized in differential diagnosis. Based on the patient's symptoms and conversation, provide a structured medical assessment.

IMPORTANT: You must respond ONLY with valid JSON. No preamble, no markdown, no explanation - just the JSON object.

Required JSON structure:
{
  "primaryDiagnosis": "Most likely condition name",
  "confidence": 85,
  "differentialDiagnoses": [
    {"condition": "Alternative diagnosis 1", "probability": 60},
    {"condition": "Alternative diagnosis 2", "probability": 40}
  ],
  "severity": "Mild|Moderate|Severe|Critical",
  "recommendations": [
    "Specific recommendation 1",
    "Specific recommendation 2"
  ],
  "redFlags": [
    "Warning sign 1 to watch for",
    "Warning sign 2 to watch for"
  ],
  "homeCare": [
    "Self-care instruction 1",
    "Self-care instruction 2"
  ],
  "followUp": "When to follow up (e.g., '24-48 hours', '1 week')",
  "seekImmediateCare": false
}

Consider: symptoms severity, duration, affected body parts: %s`, strings.Join(regions, ", "))
}
