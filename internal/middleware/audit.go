package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/request"
)

// Audit logs rejected identities and rate limit hits, plus every successful
// state-changing request.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.RequestID(r.Context())),
			}

			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event", fields...)
				return
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields...)
				return
			}

			if isMutation(r.Method) && wrapped.statusCode < http.StatusBadRequest {
				logger.Info("audit_mutation", fields...)
			}
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
