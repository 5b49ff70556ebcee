package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one route.
type EndpointConfig struct {
	Path   string        // "/search", "/vacancies/{id}/keywords"; a trailing "/" matches by prefix
	Method string        // HTTP method
	Limit  int           // requests per Window
	Window time.Duration // refill window
	Burst  int           // bucket capacity; Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Environment variables read by LoadConfig.
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvSearchLimit     = "RATE_LIMIT_SEARCH_PER_MINUTE"
	EnvExtractLimit    = "RATE_LIMIT_EXTRACT_PER_HOUR"
	EnvWhitelist       = "RATE_LIMIT_WHITELIST"
	EnvBlacklist       = "RATE_LIMIT_BLACKLIST"
)

// Defaults for the search and keyword-extraction routes.
const (
	DefaultSearchPerMinute = 60
	DefaultExtractPerHour  = 30
)

// LoadConfig reads the rate limiting configuration from the environment.
func LoadConfig() *Config {
	if !envValue(EnvEnabled, true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envValue(EnvDefaultLimit, 600, strconv.Atoi),
		DefaultWindow:   envValue(EnvDefaultWindow, time.Minute, time.ParseDuration),
		CleanupInterval: envValue(EnvCleanupInterval, 5*time.Minute, time.ParseDuration),
		IdleTimeout:     time.Hour,
		Whitelist:       parseIPList(os.Getenv(EnvWhitelist)),
		Blacklist:       parseIPList(os.Getenv(EnvBlacklist)),
		EndpointConfigs: DefaultEndpointConfigs(
			envValue(EnvSearchLimit, DefaultSearchPerMinute, strconv.Atoi),
			envValue(EnvExtractLimit, DefaultExtractPerHour, strconv.Atoi),
		),
	}
}

// DefaultEndpointConfigs returns the per-route limits.
// Every search hits the résumé API up to twice and every extraction is one LLM call.
func DefaultEndpointConfigs(searchPerMinute, extractPerHour int) []EndpointConfig {
	searchBurst := max(1, searchPerMinute/6)
	extractBurst := max(1, extractPerHour/6)
	return []EndpointConfig{
		{Path: "/vacancies/{id}/keywords", Method: "POST", Limit: extractPerHour, Window: time.Hour, Burst: extractBurst},
		{Path: "/keywords", Method: "POST", Limit: extractPerHour, Window: time.Hour, Burst: extractBurst},

		{Path: "/search", Method: "POST", Limit: searchPerMinute, Window: time.Minute, Burst: searchBurst},
		{Path: "/search/stream", Method: "POST", Limit: searchPerMinute, Window: time.Minute, Burst: searchBurst},
		{Path: "/search/legacy", Method: "POST", Limit: searchPerMinute, Window: time.Minute, Burst: searchBurst},

		// one call per manager
		{Path: "/vacancies", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// envValue parses the named variable, falling back to def when unset or invalid.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
