// Package config provides configuration loading and validation for the CLI and server.
// Values come from an optional JSON file, then the environment, then defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variable names.
const (
	EnvAccessToken   = "ACCESS_TOKEN"
	EnvAPIBaseURL    = "HH_API_BASE_URL"
	EnvEmployerID    = "HH_EMPLOYER_ID"
	EnvCountryAreaID = "HH_COUNTRY_AREA_ID"
	EnvLLMProvider   = "LLM_PROVIDER"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvLogEnv        = "LOG_ENV"
	EnvLogLevel      = "LOG_LEVEL"
	EnvPerPage       = "SEARCH_PER_PAGE"
)

// Duration is a time.Duration read from JSON as "15s" or as whole seconds.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the application configuration.
type Config struct {
	// API
	AccessToken   string `json:"access_token,omitempty"` // Bearer credential; may stay empty until a search is attempted
	APIBaseURL    string `json:"api_base_url,omitempty" validate:"omitempty,url"`
	UserAgent     string `json:"user_agent,omitempty"`
	EmployerID    string `json:"employer_id,omitempty" validate:"omitempty,numeric"`
	CountryAreaID string `json:"country_area_id,omitempty" validate:"omitempty,numeric"`

	// LLM
	LLMProvider   string `json:"llm_provider,omitempty" validate:"omitempty,oneof=openai gemini"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty" validate:"omitempty,url"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL URL for the keyword cache

	// Logging
	LogEnv   string `json:"log_env,omitempty" validate:"omitempty,oneof=local dev prod"`
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// Search
	SearchTimeout Duration `json:"search_timeout,omitempty" validate:"gte=0"`
	LookupTimeout Duration `json:"lookup_timeout,omitempty" validate:"gte=0"`
	PerPage       int      `json:"per_page,omitempty" validate:"gte=0,lte=100"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL:    "https://api.hh.ru",
		UserAgent:     "ForteTalent/1.5",
		EmployerID:    "24761",
		CountryAreaID: "40",
		LLMProvider:   "openai",
		LogEnv:        "local",
		SearchTimeout: Duration(15 * time.Second),
		LookupTimeout: Duration(10 * time.Second),
		PerPage:       20,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration fields that are set in the environment.
func FromEnv() Config {
	cfg := Config{
		AccessToken:   env(EnvAccessToken),
		APIBaseURL:    env(EnvAPIBaseURL),
		EmployerID:    env(EnvEmployerID),
		CountryAreaID: env(EnvCountryAreaID),
		LLMProvider:   strings.ToLower(env(EnvLLMProvider)),
		OpenAIAPIKey:  env(EnvOpenAIKey),
		OpenAIBaseURL: env(EnvOpenAIBaseURL),
		GeminiAPIKey:  env(EnvGeminiKey),
		DatabaseURL:   env(EnvDatabaseURL),
		LogEnv:        strings.ToLower(env(EnvLogEnv)),
		LogLevel:      strings.ToLower(env(EnvLogLevel)),
	}
	if v := env(EnvPerPage); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PerPage = n
		}
	}
	return cfg
}

// Load combines an optional config file, the environment and the defaults,
// in that order of precedence, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	merged := cfg.MergeWithDefaults(FromEnv())
	merged = merged.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// A missing access token is not an error here; searches report it per call.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.AccessToken, defaults.AccessToken)
	fill(&result.APIBaseURL, defaults.APIBaseURL)
	fill(&result.UserAgent, defaults.UserAgent)
	fill(&result.EmployerID, defaults.EmployerID)
	fill(&result.CountryAreaID, defaults.CountryAreaID)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	fill(&result.OpenAIBaseURL, defaults.OpenAIBaseURL)
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.LogEnv, defaults.LogEnv)
	fill(&result.LogLevel, defaults.LogLevel)

	// Numeric fields: use default if zero
	if result.SearchTimeout == 0 {
		result.SearchTimeout = defaults.SearchTimeout
	}
	if result.LookupTimeout == 0 {
		result.LookupTimeout = defaults.LookupTimeout
	}
	if result.PerPage == 0 {
		result.PerPage = defaults.PerPage
	}

	return result
}

// LLMAPIKey returns the key of the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
