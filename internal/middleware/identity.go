package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	logpkg "github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/request"
	"github.com/benvon/life-rpg/internal/validation"
)

// DefaultIdentityHeader is set by the authenticating proxy in front of the API
const DefaultIdentityHeader = "X-Forwarded-Email"

// Identity resolves the player named by a trusted proxy header and stores it
// in the request context. Requests without a usable identity get 401.
func Identity(users database.UserRepositoryInterface, header string, logger *zap.Logger) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultIdentityHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.ToLower(strings.TrimSpace(r.Header.Get(header)))
			if email == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing identity header", logger)
				return
			}
			if err := validation.ValidateEmail(email); err != nil {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid identity header", logger)
				return
			}

			user, err := users.GetOrCreateByEmail(r.Context(), email)
			if err != nil {
				logger.Error("identity_lookup_failed",
					zap.Error(err),
					zap.String("request_id", request.RequestID(r.Context())),
					zap.String("email", logpkg.SanitizeEmail(email)),
				)
				respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to resolve user", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}
