package models

import (
	"strings"
	"time"
)

// CorsConfig is the stored CORS policy the server reloads at runtime
type CorsConfig struct {
	ConfigKey        string    `json:"config_key"`
	AllowedOrigins   string    `json:"allowed_origins"` // comma-separated, "*" allowed
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"` // seconds
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Origins returns the allowed origins as a trimmed, deduplicated list
func (c *CorsConfig) Origins() []string {
	return SplitOrigins(c.AllowedOrigins)
}

// SplitOrigins splits a comma-separated origin list, trimming and deduplicating
func SplitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		s := strings.TrimSpace(p)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// RatelimitConfig is the stored per-caller API rate in limiter format
// ("5-S", "100-M", "1000-H").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
