package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var markup = regexp.MustCompile(`<[^>]*>`)

// dropControl removes control characters, keeping line breaks and tabs when
// multiline is set.
func dropControl(multiline bool) func(rune) rune {
	return func(r rune) rune {
		switch {
		case multiline && (r == '\n' || r == '\r' || r == '\t'):
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}
}

// SanitizeString prepares single-line input such as names for storage: it is
// trimmed, stripped of control characters and HTML escaped.
func SanitizeString(input string) string {
	return html.EscapeString(strings.Map(dropControl(false), strings.TrimSpace(input)))
}

// SanitizeText is SanitizeString for multi-line bodies such as reviews and
// tour descriptions.
func SanitizeText(input string) string {
	return html.EscapeString(strings.Map(dropControl(true), strings.TrimSpace(input)))
}

// SanitizeEmail lowercases an address and strips any markup around it.
func SanitizeEmail(email string) string {
	email = markup.ReplaceAllString(strings.TrimSpace(email), "")
	return strings.ToLower(strings.Map(dropControl(false), email))
}

func ValidateAndSanitizeEmail(email string) (string, error) {
	sanitized := SanitizeEmail(email)
	if !IsValidEmail(sanitized) {
		return "", fmt.Errorf("invalid email format: %q", email)
	}
	return sanitized, nil
}
