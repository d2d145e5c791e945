package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicFormatter renders format contexts through the Anthropic
// Messages API.
type AnthropicFormatter struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicFormatter creates a formatter against the Anthropic API.
func NewAnthropicFormatter(cfg *Config, logger *zap.Logger) (*AnthropicFormatter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &AnthropicFormatter{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Format renders the context through the Messages API.
func (f *AnthropicFormatter) Format(ctx context.Context, fc FormatContext) (string, error) {
	prompt := BuildPrompt(fc)

	f.logger.Debug("Formatter request",
		zap.String("model", f.model),
		zap.String("intent", fc.Intent),
		zap.Int("prompt_len", len(prompt)))

	resp, err := f.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(f.model),
		MaxTokens: 2000,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create messages: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", fmt.Errorf("message response contained no text block")
}
