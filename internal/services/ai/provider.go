package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/models"
)

// ErrEmptyNote is returned when a provider answers without any text
var ErrEmptyNote = errors.New("provider returned an empty companion note")

// CompanionProvider writes a short companion note for a classified brain dump
type CompanionProvider interface {
	// CompanionNote returns a single paragraph reflecting the entry back to the user
	CompanionNote(ctx context.Context, text string, result *models.ClassificationResult) (string, error)
}

// ProviderConfig holds the settings a provider factory needs
type ProviderConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Logger    *zap.Logger
	DebugMode bool
}

// ProviderFactory creates a companion provider from configuration
type ProviderFactory func(cfg ProviderConfig) (CompanionProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry returns a registry with the openai and anthropic providers registered
func NewDefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	RegisterOpenAI(r)
	RegisterAnthropic(r)
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, cfg ProviderConfig) (CompanionProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(cfg)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
