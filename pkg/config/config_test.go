package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 0.15, cfg.Routing.MixedThreshold)
	assert.Equal(t, 5, cfg.Routing.DocsTopK)
	assert.Equal(t, 3, cfg.Synthesis.MaxJoins)
	assert.Equal(t, 100, cfg.Synthesis.DefaultLimit)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, "mssql", cfg.Datasource.Driver)
	assert.Empty(t, cfg.Formatter.Provider)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROUTING_MIXED_THRESHOLD", "0.25")
	t.Setenv("CACHE_CAPACITY", "10")
	t.Setenv("DATASOURCE_DRIVER", "postgres")
	t.Setenv("DATASOURCE_DSN", "postgres://svc:secret@db/bantotal")
	t.Setenv("FORMATTER_PROVIDER", "openai")

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.25, cfg.Routing.MixedThreshold)
	assert.Equal(t, 10, cfg.Cache.Capacity)
	assert.Equal(t, "postgres", cfg.Datasource.Driver)
	assert.NotEmpty(t, cfg.Datasource.DSN)
	assert.Equal(t, "openai", cfg.Formatter.Provider)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"threshold above one", "ROUTING_MIXED_THRESHOLD", "1.5"},
		{"negative threshold", "ROUTING_MIXED_THRESHOLD", "-0.1"},
		{"negative joins", "SYNTHESIS_MAX_JOINS", "-1"},
		{"zero limit", "SYNTHESIS_DEFAULT_LIMIT", "0"},
		{"negative capacity", "CACHE_CAPACITY", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load("dev")
			assert.Error(t, err)
		})
	}
}
