package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/models"
)

const (
	// DefaultAnthropicModel is the default Claude model
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	// companionMaxTokens bounds a companion note; one paragraph fits easily
	companionMaxTokens = 400
)

// AnthropicProvider implements CompanionProvider using the Anthropic Messages API
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ CompanionProvider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		logger:    logger,
		debugMode: cfg.DebugMode,
	}
}

// CompanionNote asks Claude for a one-paragraph note about the entry
func (p *AnthropicProvider) CompanionNote(ctx context.Context, text string, result *models.ClassificationResult) (string, error) {
	prompt := BuildCompanionPrompt(text, result)

	fields := logFields(ctx, "anthropic", p.model)
	if p.debugMode {
		p.logger.Debug("llm_api_request", append(fields,
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
		)...)
	}

	start := time.Now()
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: companionMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: companionSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error", append(fields, zap.Error(err), zap.Int64("latency_ms", latency.Milliseconds()))...)
		}
		return "", wrapProviderError("failed to write companion note", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	content := b.String()

	if p.debugMode {
		p.logger.Debug("llm_api_response", append(fields,
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("input_tokens", message.Usage.InputTokens),
			zap.Int64("output_tokens", message.Usage.OutputTokens),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)...)
	}

	return CleanNote(content)
}

// RegisterAnthropic registers the Anthropic provider with the registry
func RegisterAnthropic(registry *ProviderRegistry) {
	registry.Register("anthropic", func(cfg ProviderConfig) (CompanionProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}
		return NewAnthropicProvider(cfg), nil
	})
}
