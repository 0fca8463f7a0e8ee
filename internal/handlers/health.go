package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheckFunc reports whether one dependency is reachable
type HealthCheckFunc func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheckFunc
}

// HealthChecker handles health check requests
type HealthChecker struct {
	checks []namedCheck
	logger *zap.Logger
}

// NewHealthChecker creates a new health checker. Dependencies are added with WithCheck.
func NewHealthChecker(logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthChecker{logger: logger}
}

// WithCheck registers a dependency probed in extended mode. A nil check is
// reported as "not configured".
func (h *HealthChecker) WithCheck(name string, check HealthCheckFunc) *HealthChecker {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if c.check == nil {
				response.Checks[c.name] = "not configured"
				continue
			}
			if err := h.run(r.Context(), c.check); err != nil {
				h.logger.Warn("health_check_failed", zap.String("check", c.name), zap.Error(err))
				response.Status = "unhealthy"
				response.Checks[c.name] = "unhealthy"
				continue
			}
			response.Checks[c.name] = "healthy"
		}
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed_to_encode_health_response", zap.Error(err))
	}
}

func (h *HealthChecker) run(ctx context.Context, check HealthCheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return check(ctx)
}

// Version serves minimal build information
func Version(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
