package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited indicates the API rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the API quota was exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// statusOverloaded is Anthropic's "overloaded" status; it is retried like a rate limit
const statusOverloaded = 529

// APIError represents an error from the AI provider API
type APIError struct {
	Provider    string
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // true for quota errors, false for rate limits
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d, type %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return isThrottleStatus(apiErr.StatusCode) && !apiErr.IsPermanent
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "overloaded")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing") ||
		strings.Contains(errStr, "credit balance")
}

func isThrottleStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == statusOverloaded
}

// ExtractAPIError converts a throttling error from either SDK into an APIError.
// It returns nil for anything that is not a rate limit or quota problem.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var existing *APIError
	if errors.As(err, &existing) {
		return existing
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		if !isThrottleStatus(oaErr.StatusCode) {
			return nil
		}
		return withRetryAfter(&APIError{
			Provider:    "openai",
			StatusCode:  oaErr.StatusCode,
			Message:     oaErr.Message,
			Type:        oaErr.Type,
			Code:        oaErr.Code,
			IsPermanent: oaErr.Code == "insufficient_quota",
		})
	}

	var anErr *anthropic.Error
	if errors.As(err, &anErr) {
		if !isThrottleStatus(anErr.StatusCode) {
			return nil
		}
		apiErr := &APIError{
			Provider:   "anthropic",
			StatusCode: anErr.StatusCode,
			Message:    anErr.Error(),
			Type:       "rate_limit_error",
		}
		if anErr.StatusCode == statusOverloaded {
			apiErr.Type = "overloaded_error"
		}
		return withRetryAfter(apiErr)
	}

	// Fall back to the message text; SDK errors embed the JSON body.
	errStr := err.Error()
	if !strings.Contains(errStr, "429") {
		return nil
	}
	apiErr := &APIError{
		Provider:   "unknown",
		StatusCode: http.StatusTooManyRequests,
		Message:    errStr,
		Type:       "rate_limit_error",
	}
	if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
		jsonStr := errStr[jsonStart:]
		if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
			var errorData struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(jsonStr[:jsonEnd+1]), &errorData) == nil {
				apiErr.Message = errorData.Message
				apiErr.Type = errorData.Type
				apiErr.Code = errorData.Code
				apiErr.IsPermanent = errorData.Code == "insufficient_quota"
			}
		}
	}
	return withRetryAfter(apiErr)
}

// withRetryAfter sets the provider's usual reset window: a minute for rate
// limits, an hour for exhausted quota.
func withRetryAfter(apiErr *APIError) *APIError {
	retryAfter := 60 * time.Second
	if apiErr.IsPermanent {
		retryAfter = time.Hour
	}
	apiErr.RetryAfter = &retryAfter
	return apiErr
}

// wrapProviderError wraps err as an APIError when it is a throttling error
func wrapProviderError(op string, err error) error {
	if apiErr := ExtractAPIError(err); apiErr != nil {
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetRetryDelay calculates the delay before retrying based on error type
func GetRetryDelay(err error, attempt int) time.Duration {
	// Shift is capped at 10 so the duration math cannot overflow.
	var shift uint
	switch {
	case attempt <= 0:
		shift = 0
	case attempt > 10:
		shift = 10
	default:
		shift = uint(attempt)
	}

	if IsQuotaError(err) {
		delay := time.Hour * time.Duration(1<<shift)
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay
	}

	if IsRateLimitError(err) {
		delay := 60 * time.Second * time.Duration(1<<shift)
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	}

	delay := 5 * time.Second * time.Duration(1<<shift)
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}
