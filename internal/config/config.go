package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL         string
	ServerPort          string
	BaseURL             string
	FrontendURL         string
	EnableHSTS          bool
	IdentityHeader      string
	RedisURL            string
	RabbitMQURL         string
	RabbitMQPrefetch    int
	DLQRetention        time.Duration
	AIProvider          string
	AIModel             string
	AIBaseURL           string
	OpenAIKey           string
	AnthropicKey        string
	StreakSweepSchedule string
	WorkerDebugMode     bool
	ServerDebugMode     bool
	OTELEnabled         bool
	OTELEndpoint        string
}

// Load loads configuration from environment variables. When CONFIG_PATH names
// a YAML file its keys (the same names as the environment variables) fill in
// anything the environment leaves unset.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookupEnv func(string) (string, bool)) (*Config, error) {
	src := source{lookupEnv: lookupEnv}
	if path, ok := lookupEnv("CONFIG_PATH"); ok && path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg := &Config{
		DatabaseURL:         src.getEnv("DATABASE_URL", ""),
		ServerPort:          src.getEnv("SERVER_PORT", "8080"),
		BaseURL:             src.getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:         src.getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:          src.getEnvBool("ENABLE_HSTS", false),
		IdentityHeader:      src.getEnv("IDENTITY_HEADER", "X-Forwarded-Email"),
		RedisURL:            src.getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:         src.getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:    src.getEnvInt("RABBITMQ_PREFETCH", 1),
		DLQRetention:        src.getEnvDuration("DLQ_RETENTION", 24*time.Hour),
		AIProvider:          src.getEnv("AI_PROVIDER", "openai"),
		AIModel:             src.getEnv("AI_MODEL", ""),
		AIBaseURL:           src.getEnv("AI_BASE_URL", ""),
		OpenAIKey:           src.getEnv("OPENAI_API_KEY", ""),
		AnthropicKey:        src.getEnv("ANTHROPIC_API_KEY", ""),
		StreakSweepSchedule: src.getEnv("STREAK_SWEEP_SCHEDULE", "5 0 * * *"),
		WorkerDebugMode:     src.getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:     src.getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:         src.getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:        src.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for brain dump processing")
	}

	if cfg.RabbitMQPrefetch < 1 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be at least 1, got %d", cfg.RabbitMQPrefetch)
	}

	return cfg, nil
}

// AIAPIKey returns the API key for the configured companion provider, or ""
// when the companion note is disabled.
func (c *Config) AIAPIKey() string {
	switch c.AIProvider {
	case "anthropic":
		return c.AnthropicKey
	case "openai":
		return c.OpenAIKey
	default:
		return ""
	}
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

// source resolves a key from the environment first, then the config file.
type source struct {
	lookupEnv func(string) (string, bool)
	file      map[string]string
}

func (s source) lookup(key string) string {
	if value, ok := s.lookupEnv(key); ok && value != "" {
		return value
	}
	return s.file[key]
}

func (s source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getEnvBool(key string, defaultValue bool) bool {
	if value := s.lookup(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (s source) getEnvInt(key string, defaultValue int) int {
	if value := s.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (s source) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := s.lookup(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
