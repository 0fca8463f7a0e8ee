package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		status    int
		wantMsg   string
		wantLevel zapcore.Level
	}{
		{"unauthorized is a security event", http.MethodGet, http.StatusUnauthorized, "security_event", zapcore.WarnLevel},
		{"forbidden is a security event", http.MethodDelete, http.StatusForbidden, "security_event", zapcore.WarnLevel},
		{"rate limited", http.MethodPost, http.StatusTooManyRequests, "rate_limit_violation", zapcore.WarnLevel},
		{"successful mutation", http.MethodPost, http.StatusCreated, "audit_mutation", zapcore.InfoLevel},
		{"failed mutation", http.MethodPatch, http.StatusBadRequest, "", 0},
		{"read", http.MethodGet, http.StatusOK, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.DebugLevel)
			handler := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, "/api/v1/brain-dumps", nil))

			entries := logs.All()
			if tt.wantMsg == "" {
				if len(entries) != 0 {
					t.Errorf("Expected no audit entries, got %d", len(entries))
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("Expected one audit entry, got %d", len(entries))
			}
			if entries[0].Message != tt.wantMsg {
				t.Errorf("Expected message %s, got %s", tt.wantMsg, entries[0].Message)
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("Expected level %v, got %v", tt.wantLevel, entries[0].Level)
			}
		})
	}
}
