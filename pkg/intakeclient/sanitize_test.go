package intakeclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "I have a sore throat", "I have a sore throat"},
		{"trims whitespace", "  headache  ", "headache"},
		{"strips script tags", `before<script>alert(1)</script>after`, "beforeafter"},
		{"strips script tags case-insensitive", `<SCRIPT src="x">bad()</SCRIPT>ok`, "ok"},
		{"strips iframes", `<iframe src="evil"></iframe>text`, "text"},
		{"strips javascript scheme", "click javascript:alert(1)", "click alert(1)"},
		{"strips event handlers", `<img onerror=alert(1)>`, `<img alert(1)>`},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.input))
		})
	}
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("I feel dizzy"))
	assert.NoError(t, ValidateMessage(strings.Repeat("a", MaxMessageLength)))

	assert.Error(t, ValidateMessage(""))
	assert.Error(t, ValidateMessage("   "))
	assert.Error(t, ValidateMessage(strings.Repeat("a", MaxMessageLength+1)))
}

func TestValidateRegionSelection(t *testing.T) {
	assert.NoError(t, ValidateRegionSelection([]string{"Head"}))
	assert.NoError(t, ValidateRegionSelection(make([]string, 10)))

	assert.Error(t, ValidateRegionSelection(nil))
	assert.Error(t, ValidateRegionSelection(make([]string, 11)))
}
