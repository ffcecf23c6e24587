package intakeclient

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	iframeTagPattern    = regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// SanitizeInput strips script and iframe tags, the javascript: scheme and
// inline event handler attributes from user input before it is sent.
func SanitizeInput(input string) string {
	out := strings.TrimSpace(input)
	out = scriptTagPattern.ReplaceAllString(out, "")
	out = iframeTagPattern.ReplaceAllString(out, "")
	out = jsSchemePattern.ReplaceAllString(out, "")
	out = eventHandlerPattern.ReplaceAllString(out, "")
	return out
}

// MaxMessageLength is the client-side ceiling on a single message.
const MaxMessageLength = 1000

// ValidateMessage checks a single outgoing message before transport.
func ValidateMessage(message string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return fmt.Errorf("message is required")
	}
	if len(trimmed) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return nil
}

// ValidateRegionSelection checks a body-region selection before requesting a
// diagnosis. At most ten regions can be assessed at once.
func ValidateRegionSelection(regionNames []string) error {
	if len(regionNames) == 0 {
		return fmt.Errorf("please select at least one body part")
	}
	if len(regionNames) > 10 {
		return fmt.Errorf("maximum 10 body parts can be selected")
	}
	return nil
}
