package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements CompanionProvider using OpenAI's chat completions API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ CompanionProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider. The SDK's own retries are
// disabled; failed jobs are retried through the queue.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		model:     cfg.Model,
		logger:    logger,
		debugMode: cfg.DebugMode,
	}
}

// CompanionNote asks the model for a one-paragraph note about the entry
func (p *OpenAIProvider) CompanionNote(ctx context.Context, text string, result *models.ClassificationResult) (string, error) {
	prompt := BuildCompanionPrompt(text, result)
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(companionSystemPrompt),
			openai.UserMessage(prompt),
		},
		// Temperature omitted; some models only accept their default.
	}

	fields := logFields(ctx, "openai", p.model)
	if p.debugMode {
		p.logger.Debug("llm_api_request", append(fields,
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
		)...)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error", append(fields, zap.Error(err), zap.Int64("latency_ms", latency.Milliseconds()))...)
		}
		return "", wrapProviderError("failed to write companion note", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.debugMode {
		p.logger.Debug("llm_api_response", append(fields,
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)...)
	}

	return CleanNote(content)
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(cfg ProviderConfig) (CompanionProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai api key is required")
		}
		return NewOpenAIProvider(cfg), nil
	})
}

func logFields(ctx context.Context, provider, model string) []zap.Field {
	return []zap.Field{
		zap.String("operation", "companion_note"),
		zap.String("provider", provider),
		zap.String("model", model),
		zap.String("user_id", ExtractUserID(ctx)),
		zap.String("brain_dump_id", ExtractBrainDumpID(ctx)),
		zap.String("request_id", ExtractRequestID(ctx)),
	}
}
