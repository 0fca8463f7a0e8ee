package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"
)

const (
	// DefaultMaxRequestSize bounds request bodies. A maximal brain dump is far
	// below this even with four-byte runes.
	DefaultMaxRequestSize int64 = 1 << 20
	// DefaultRequestTimeout bounds handler execution
	DefaultRequestTimeout = 30 * time.Second
)

// MaxRequestSize rejects declared oversized bodies with 413 and caps the rest
// so decoders fail once maxBytes is read.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body is too large", nil)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentType requires application/json on requests that carry a body.
// Body-less POSTs such as /quests/{id}/complete pass through.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get("Content-Type")
		if raw == "" {
			respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", nil)
			return
		}
		mediaType, _, err := mime.ParseMediaType(raw)
		if err != nil || mediaType != "application/json" {
			respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	return r.ContentLength > 0 || len(r.TransferEncoding) > 0
}

// Timeout cancels the request context after timeout and answers 503 with the
// standard error body if the handler has not written by then.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	body, _ := json.Marshal(ErrorResponse{
		Success: false,
		Error:   "Request Timeout",
		Message: "The request took too long to process",
	})

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers set their own Content-Type, which replaces this one.
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
