package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ClassifierHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.ClassifierModel)
	assert.Equal(t, 0.5, cfg.Temperature)
	assert.Equal(t, 3, cfg.MaxParseAttempts)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ClassifierHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ClassifierHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithClassifierHost("https://api.groq.com/openai/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "https://api.groq.com/openai/v1", cfg.ClassifierHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithClassifierModel("llama3-8b-8192"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "llama3-8b-8192", cfg.ClassifierModel)
	})

	t.Run("with tokens and sampling", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingToken("ek"),
			WithClassifierToken("ck"),
			WithTemperature(0.0),
			WithRequestsPerSecond(0.5),
			WithMaxParseAttempts(5),
		)

		assert.Equal(t, "ek", cfg.EmbeddingToken)
		assert.Equal(t, "ck", cfg.ClassifierToken)
		assert.Equal(t, 0.0, cfg.Temperature)
		assert.Equal(t, 0.5, cfg.RequestsPerSecond)
		assert.Equal(t, 5, cfg.MaxParseAttempts)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "adds suffix", in: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "strips trailing slash", in: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "keeps suffix", in: "https://api.groq.com/openai/v1", want: "https://api.groq.com/openai/v1"},
		{name: "empty stays empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.in, ClassifierHost: tt.in}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.ClassifierHost)
			assert.Equal(t, "none", cfg.EmbeddingToken)
			assert.Equal(t, "none", cfg.ClassifierToken)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, errMsg: "EmbeddingHost"},
		{name: "missing classifier host", mutate: func(c *Config) { c.ClassifierHost = "" }, errMsg: "ClassifierHost"},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, errMsg: "EmbeddingModel"},
		{name: "missing classifier model", mutate: func(c *Config) { c.ClassifierModel = "" }, errMsg: "ClassifierModel"},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 3 }, errMsg: "Temperature"},
		{name: "negative rate", mutate: func(c *Config) { c.RequestsPerSecond = -1 }, errMsg: "RequestsPerSecond"},
		{name: "no parse attempts", mutate: func(c *Config) { c.MaxParseAttempts = 0 }, errMsg: "MaxParseAttempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
