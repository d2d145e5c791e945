package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIFormatter talks to any OpenAI-compatible chat endpoint, which covers
// OpenAI itself and local Ollama/vLLM deployments.
type OpenAIFormatter struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Config holds configuration for creating a formatter client.
type Config struct {
	Provider    string  // "openai" or "anthropic"
	Endpoint    string  // Base URL, e.g. "http://localhost:11434/v1"
	Model       string  // Model name
	APIKey      string  // Optional for local endpoints
	Temperature float64 // Sampling temperature
}

// NewOpenAIFormatter creates a formatter against an OpenAI-compatible
// endpoint.
func NewOpenAIFormatter(cfg *Config, logger *zap.Logger) (*OpenAIFormatter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	temperature := float32(cfg.Temperature)
	if temperature <= 0 {
		temperature = 0.2
	}

	return &OpenAIFormatter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: temperature,
		logger:      logger.Named("llm"),
	}, nil
}

// Format renders the context through a chat completion.
func (f *OpenAIFormatter) Format(ctx context.Context, fc FormatContext) (string, error) {
	prompt := BuildPrompt(fc)

	f.logger.Debug("Formatter request",
		zap.String("model", f.model),
		zap.String("intent", fc.Intent),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: f.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: f.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	f.logger.Debug("Formatter response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}
