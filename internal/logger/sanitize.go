package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs
	MaxPathLength = 500
	// MaxEmailLength bounds identity header values in logs
	MaxEmailLength = 254
	// MaxErrorMessageLength bounds error messages in logs and stored failure reasons
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength bounds any other client-supplied string in logs
	MaxGeneralStringLength = 2000
)

// StripControl drops invalid UTF-8 and control characters other than space,
// tab, newline and carriage return.
func StripControl(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// Truncate cuts s to maxRunes characters, marking the cut with "...".
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes]) + "..."
}

// SanitizeString strips control characters and truncates. A non-positive
// maxRunes means MaxGeneralStringLength.
func SanitizeString(s string, maxRunes int) string {
	if s == "" {
		return ""
	}
	if maxRunes <= 0 {
		maxRunes = MaxGeneralStringLength
	}
	return Truncate(StripControl(s), maxRunes)
}

// SanitizePath sanitizes a URL path for logging. Newlines are dropped so a
// crafted path cannot forge log lines in console output.
func SanitizePath(path string) string {
	path = strings.NewReplacer("\n", "", "\r", "").Replace(path)
	return SanitizeString(path, MaxPathLength)
}

// SanitizeEmail sanitizes an identity header value for logging
func SanitizeEmail(email string) string {
	return SanitizeString(strings.TrimSpace(email), MaxEmailLength)
}

// SanitizeError returns err's message cleaned and bounded
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}
