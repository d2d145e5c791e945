package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewFormatter creates the formatter matching cfg.Provider. An empty
// provider means formatting is disabled and the caller falls back to plain
// structured output.
func NewFormatter(cfg *Config, logger *zap.Logger) (Formatter, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIFormatter(cfg, logger)
	case "anthropic":
		return NewAnthropicFormatter(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown formatter provider %q", cfg.Provider)
	}
}
