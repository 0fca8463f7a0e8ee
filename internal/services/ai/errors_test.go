package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api error 429", &APIError{StatusCode: 429}, true},
		{"api error overloaded", &APIError{StatusCode: 529}, true},
		{"permanent quota", &APIError{StatusCode: 429, IsPermanent: true}, false},
		{"wrapped api error", fmt.Errorf("job failed: %w", &APIError{StatusCode: 429}), true},
		{"message text", errors.New("POST: 429 Too Many Requests"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"permanent", &APIError{StatusCode: 429, IsPermanent: true}, true},
		{"insufficient quota code", &APIError{StatusCode: 429, Code: "insufficient_quota"}, true},
		{"plain rate limit", &APIError{StatusCode: 429}, false},
		{"billing text", errors.New("check your billing details"), true},
		{"credit balance text", errors.New("Your credit balance is too low"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("IsQuotaError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAPIError_FromMessage(t *testing.T) {
	t.Parallel()

	err := errors.New(`POST "https://api.openai.com/v1/chat/completions": 429 Too Many Requests {"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}`)
	apiErr := ExtractAPIError(err)
	if apiErr == nil {
		t.Fatal("Expected APIError")
	}
	if !apiErr.IsPermanent {
		t.Error("Expected quota exhaustion to be permanent")
	}
	if apiErr.RetryAfter == nil || *apiErr.RetryAfter != time.Hour {
		t.Errorf("Expected 1h retry after, got %v", apiErr.RetryAfter)
	}
	if apiErr.Code != "insufficient_quota" {
		t.Errorf("Expected code insufficient_quota, got %q", apiErr.Code)
	}

	if ExtractAPIError(errors.New("500 internal error")) != nil {
		t.Error("Expected nil for non-throttling error")
	}
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"generic first attempt", errors.New("boom"), 0, 5 * time.Second},
		{"generic third attempt", errors.New("boom"), 2, 20 * time.Second},
		{"generic capped", errors.New("boom"), 10, 5 * time.Minute},
		{"negative attempt", errors.New("boom"), -3, 5 * time.Second},
		{"rate limit first attempt", &APIError{StatusCode: 429}, 0, time.Minute},
		{"rate limit capped", &APIError{StatusCode: 429}, 8, 15 * time.Minute},
		{"quota first attempt", &APIError{StatusCode: 429, IsPermanent: true}, 0, time.Hour},
		{"quota capped", &APIError{StatusCode: 429, IsPermanent: true}, 30, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetRetryDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("GetRetryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	if got := SanitizeAPIKey(""); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
	if got := SanitizeAPIKey("short"); got != RedactedValue {
		t.Errorf("Expected %q, got %q", RedactedValue, got)
	}
	if got := SanitizeAPIKey("sk-abcdefghijkl"); got != "sk-a"+RedactedValue+"ijkl" {
		t.Errorf("Unexpected sanitized key %q", got)
	}
}
