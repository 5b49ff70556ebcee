package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvAccessToken, EnvAPIBaseURL, EnvEmployerID, EnvCountryAreaID, EnvLLMProvider,
		EnvOpenAIKey, EnvOpenAIBaseURL, EnvGeminiKey, EnvDatabaseURL, EnvLogEnv, EnvLogLevel, EnvPerPage,
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"employer_id": "1455",
		"llm_provider": "gemini",
		"search_timeout": "20s",
		"lookup_timeout": 5,
		"per_page": 50
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1455", cfg.EmployerID)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 20*time.Second, cfg.SearchTimeout.Std())
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout.Std())
	assert.Equal(t, 50, cfg.PerPage)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"search_timeout": "soon"}`))
	assert.Error(t, err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
	assert.Empty(t, cfg.AccessToken)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAccessToken, " env-token ")
	t.Setenv(EnvEmployerID, "111")
	t.Setenv(EnvOpenAIKey, "sk-env")
	t.Setenv(EnvPerPage, "30")

	path := writeConfig(t, `{"employer_id": "222"}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, "222", cfg.EmployerID)
	assert.Equal(t, 30, cfg.PerPage)
	assert.Equal(t, "sk-env", cfg.LLMAPIKey())
	assert.Equal(t, "40", cfg.CountryAreaID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown provider", func(c *Config) { c.LLMProvider = "anthropic" }, true},
		{"bad base url", func(c *Config) { c.APIBaseURL = "not a url" }, true},
		{"per page too large", func(c *Config) { c.PerPage = 500 }, true},
		{"bad log env", func(c *Config) { c.LogEnv = "staging" }, true},
		{"non-numeric employer", func(c *Config) { c.EmployerID = "acme" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLLMAPIKey(t *testing.T) {
	cfg := Config{LLMProvider: "gemini", GeminiAPIKey: "g", OpenAIAPIKey: "o"}
	assert.Equal(t, "g", cfg.LLMAPIKey())
	cfg.LLMProvider = "openai"
	assert.Equal(t, "o", cfg.LLMAPIKey())
}
