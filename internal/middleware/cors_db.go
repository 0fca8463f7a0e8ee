package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/request"
)

const defaultCORSOrigin = "http://localhost:3000"

// CorsConfigSource provides the stored CORS configuration
type CorsConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
// Middleware may be invoked once per request (as gorilla/mux does), so the
// policy is held here and only rebuilt by load.
type CORSReloader struct {
	repo     CorsConfigSource
	fallback string // FRONTEND_URL, used when nothing is stored
	log      *zap.Logger
	interval time.Duration
	once     sync.Once
	mu       sync.RWMutex
	current  *cors.Cors
	origins  []string
}

// NewCORSReloader creates a CORS middleware that loads config from the DB and hot-reloads it.
func NewCORSReloader(repo CorsConfigSource, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware returns a middleware that applies the current CORS policy.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	r.once.Do(func() { r.load(context.Background()) })
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			c := r.current
			r.mu.RUnlock()
			if c == nil {
				next.ServeHTTP(w, req)
				return
			}
			c.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Origins returns the allowed origins currently in force
func (r *CORSReloader) Origins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.origins...)
}

// Start runs the reload loop until ctx is cancelled.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
	}

	origins := models.SplitOrigins(r.fallback)
	allowCreds := true
	maxAge := 86400
	if err == nil && cfg != nil {
		origins = cfg.Origins()
		allowCreds = cfg.AllowCredentials
		maxAge = cfg.MaxAge
	}
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", DefaultIdentityHeader, request.RequestIDHeader},
		ExposedHeaders:   []string{request.RequestIDHeader},
	})

	r.mu.Lock()
	r.current = c
	r.origins = origins
	r.mu.Unlock()
	r.log.Debug("cors_config_loaded", zap.Strings("origins", origins))
}
