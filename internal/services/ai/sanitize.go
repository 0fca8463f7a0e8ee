package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	logpkg "github.com/benvon/life-rpg/internal/logger"
)

// Context key types for logging (to avoid collisions with string keys)
type contextKey string

const (
	userIDContextKey      contextKey = "user_id"
	brainDumpIDContextKey contextKey = "brain_dump_id"
	requestIDContextKey   contextKey = "request_id"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// MaxDebugContentLength bounds prompts and responses logged in debug mode
	MaxDebugContentLength = 10000
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
)

// WithLogIDs attaches the user and brain dump IDs used in provider logs
func WithLogIDs(ctx context.Context, userID uuid.UUID, brainDumpID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, brainDumpIDContextKey, brainDumpID)
}

// WithRequestID attaches a request ID used in provider logs
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a safe preview of a prompt for logging.
// Even in fullLog mode the text is cleaned and bounded.
func SanitizePrompt(prompt string, fullLog bool) string {
	if prompt == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugContentLength
	}
	return sanitizeStringForLogging(prompt, maxLen)
}

// SanitizeResponse creates a safe preview of a response for logging
func SanitizeResponse(response string, fullLog bool) string {
	return SanitizePrompt(response, fullLog)
}

func sanitizeStringForLogging(s string, maxLen int) string {
	return logpkg.SanitizeString(s, maxLen)
}

// HashUserID creates a hash of a user ID for logging
func HashUserID(userID string) string {
	if userID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(hash[:])[:16]
}

// ExtractRequestID extracts a request ID from context if available
func ExtractRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// ExtractUserID extracts a user ID from context if available
func ExtractUserID(ctx context.Context) string {
	return idFromContext(ctx, userIDContextKey)
}

// ExtractBrainDumpID extracts a brain dump ID from context if available
func ExtractBrainDumpID(ctx context.Context) string {
	return idFromContext(ctx, brainDumpIDContextKey)
}

func idFromContext(ctx context.Context, key contextKey) string {
	switch id := ctx.Value(key).(type) {
	case uuid.UUID:
		return id.String()
	case string:
		return id
	default:
		return ""
	}
}
