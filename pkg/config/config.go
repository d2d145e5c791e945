package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for bantotal-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (connection strings, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Query routing configuration
	Routing RoutingConfig `yaml:"routing"`

	// SQL synthesis configuration
	Synthesis SynthesisConfig `yaml:"synthesis"`

	// Result cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Bantotal database introspection
	Datasource DatasourceConfig `yaml:"datasource"`

	// Documentation retrieval service
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Response formatter model configuration
	Formatter FormatterConfig `yaml:"formatter"`
}

// RoutingConfig holds intent classification settings.
type RoutingConfig struct {
	// MixedThreshold is the minimum confidence both signal families must
	// reach for a query to be routed to the mixed pipeline.
	MixedThreshold float64 `yaml:"mixed_threshold" env:"ROUTING_MIXED_THRESHOLD" env-default:"0.15"`

	// DocsTopK is how many documentation passages to request per docs query.
	DocsTopK int `yaml:"docs_top_k" env:"ROUTING_DOCS_TOP_K" env-default:"5"`
}

// SynthesisConfig holds SQL generation settings.
type SynthesisConfig struct {
	// MaxJoins caps how many related tables a generated SELECT may join.
	MaxJoins int `yaml:"max_joins" env:"SYNTHESIS_MAX_JOINS" env-default:"3"`

	// DefaultLimit is the TOP clause applied to generated SELECT statements.
	DefaultLimit int `yaml:"default_limit" env:"SYNTHESIS_DEFAULT_LIMIT" env-default:"100"`
}

// CacheConfig holds synthesis result cache settings.
type CacheConfig struct {
	// Capacity is the maximum number of cached synthesis results.
	// Once full, new results bypass the cache instead of evicting.
	Capacity int `yaml:"capacity" env:"CACHE_CAPACITY" env-default:"50"`
}

// DatasourceConfig holds Bantotal database connection settings.
type DatasourceConfig struct {
	// Driver selects the introspection backend: "mssql" or "postgres".
	Driver string `yaml:"driver" env:"DATASOURCE_DRIVER" env-default:"mssql"`

	// DSN is the full connection string. Secret, environment only.
	DSN string `yaml:"-" env:"DATASOURCE_DSN"`
}

// RetrievalConfig holds documentation retrieval service settings.
type RetrievalConfig struct {
	// BaseURL of the passage search service. Empty disables docs retrieval.
	BaseURL string `yaml:"base_url" env:"RETRIEVAL_BASE_URL" env-default:""`

	// TimeoutSeconds for search requests.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"RETRIEVAL_TIMEOUT_SECONDS" env-default:"30"`
}

// FormatterConfig holds natural language response formatter settings.
type FormatterConfig struct {
	// Provider selects the model backend: "openai", "anthropic", or empty to
	// return structured responses without a prose answer.
	Provider string `yaml:"provider" env:"FORMATTER_PROVIDER" env-default:""`

	// Endpoint overrides the provider's default API base URL. Used for
	// OpenAI-compatible local servers.
	Endpoint string `yaml:"endpoint" env:"FORMATTER_ENDPOINT" env-default:""`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model" env:"FORMATTER_MODEL" env-default:""`

	// APIKey for the provider. Secret, environment only.
	APIKey string `yaml:"-" env:"FORMATTER_API_KEY"`

	// Temperature for response generation.
	Temperature float64 `yaml:"temperature" env:"FORMATTER_TEMPERATURE" env-default:"0.2"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// If config.yaml does not exist, configuration comes from environment variables
// and defaults alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Routing.MixedThreshold < 0 || c.Routing.MixedThreshold > 1 {
		return fmt.Errorf("routing.mixed_threshold must be in [0, 1], got %g", c.Routing.MixedThreshold)
	}
	if c.Synthesis.MaxJoins < 0 {
		return fmt.Errorf("synthesis.max_joins must not be negative, got %d", c.Synthesis.MaxJoins)
	}
	if c.Synthesis.DefaultLimit <= 0 {
		return fmt.Errorf("synthesis.default_limit must be positive, got %d", c.Synthesis.DefaultLimit)
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must not be negative, got %d", c.Cache.Capacity)
	}
	return nil
}
