package llm

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewFormatter(t *testing.T) {
	logger := zap.NewNop()

	formatter, err := NewFormatter(&Config{}, logger)
	if err != nil || formatter != nil {
		t.Errorf("empty provider = %v, %v; want nil formatter and nil error", formatter, err)
	}

	formatter, err = NewFormatter(&Config{
		Provider: "openai",
		Endpoint: "http://localhost:11434/v1",
		Model:    "llama3",
	}, logger)
	if err != nil {
		t.Fatalf("openai provider: %v", err)
	}
	if _, ok := formatter.(*OpenAIFormatter); !ok {
		t.Errorf("formatter = %T, want *OpenAIFormatter", formatter)
	}

	formatter, err = NewFormatter(&Config{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-5",
		APIKey:   "test-key",
	}, logger)
	if err != nil {
		t.Fatalf("anthropic provider: %v", err)
	}
	if _, ok := formatter.(*AnthropicFormatter); !ok {
		t.Errorf("formatter = %T, want *AnthropicFormatter", formatter)
	}

	if _, err := NewFormatter(&Config{Provider: "cohere"}, logger); err == nil {
		t.Error("unknown provider must fail")
	}
}

func TestNewOpenAIFormatterValidation(t *testing.T) {
	logger := zap.NewNop()

	if _, err := NewOpenAIFormatter(&Config{Model: "llama3"}, logger); err == nil {
		t.Error("missing endpoint must fail")
	}
	if _, err := NewOpenAIFormatter(&Config{Endpoint: "http://localhost"}, logger); err == nil {
		t.Error("missing model must fail")
	}
}

func TestNewAnthropicFormatterValidation(t *testing.T) {
	logger := zap.NewNop()

	if _, err := NewAnthropicFormatter(&Config{Model: "claude-sonnet-4-5"}, logger); err == nil {
		t.Error("missing api key must fail")
	}
	if _, err := NewAnthropicFormatter(&Config{APIKey: "test-key"}, logger); err == nil {
		t.Error("missing model must fail")
	}
}
