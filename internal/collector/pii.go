package collector

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// minRawPasteChars is the floor for a manual text paste.
const minRawPasteChars = 20

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\b(\+?1?[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

// RedactPII replaces emails, phone numbers, and SSN-shaped tokens with
// fixed placeholders before any text is persisted or sent to a model.
func RedactPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL_REDACTED]")
	text = phoneRe.ReplaceAllString(text, "[PHONE_REDACTED]")
	text = ssnRe.ReplaceAllString(text, "[SSN_REDACTED]")
	return text
}

// ParseRaw validates a manual text paste. Anything under 20 characters after
// trimming is too short to yield insights.
func ParseRaw(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if len(cleaned) < minRawPasteChars {
		return "", eris.Errorf("collector: text too short to extract meaningful insights (minimum %d characters)", minRawPasteChars)
	}
	return cleaned, nil
}
