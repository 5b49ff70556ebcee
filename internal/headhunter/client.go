// Package headhunter is a client for the résumé-search and vacancy API (api.hh.ru).
// It centralizes auth headers, timeouts and error typing for every endpoint the
// recruiter tool uses.
package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/metrics"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.hh.ru"

// DefaultUserAgent is the fixed client identifier the API requires.
const DefaultUserAgent = "ForteTalent/1.5"

// DefaultSearchTimeout bounds a résumé search call.
const DefaultSearchTimeout = 15 * time.Second

// DefaultLookupTimeout bounds dictionary and vacancy lookups.
const DefaultLookupTimeout = 10 * time.Second

// ErrMissingToken is returned before any network call when an authorized
// endpoint is requested without an access token.
var ErrMissingToken = errors.New("access token is not configured")

// TokenSource supplies the bearer credential. An empty string means none.
type TokenSource interface {
	Token() string
}

// EnvToken reads the credential from the named environment variable on every call.
type EnvToken string

// Token implements TokenSource.
func (e EnvToken) Token() string {
	return strings.TrimSpace(os.Getenv(string(e)))
}

// StaticToken is a fixed credential.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string {
	return strings.TrimSpace(string(s))
}

// APIError represents a failed API call: transport failure or non-2xx status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("api error for %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("api error for %s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	BaseURL       string
	UserAgent     string
	SearchTimeout time.Duration
	LookupTimeout time.Duration
	VacancyRetry  RetryConfig
	HTTPClient    *http.Client
}

// DefaultOptions returns the production defaults.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:       DefaultBaseURL,
		UserAgent:     DefaultUserAgent,
		SearchTimeout: DefaultSearchTimeout,
		LookupTimeout: DefaultLookupTimeout,
		VacancyRetry:  DefaultVacancyRetry(),
	}
}

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	opts   Options
	http   *http.Client
	tokens TokenSource
	logger *zap.Logger
}

// New creates a client. Zero-valued options fall back to the defaults.
func New(opts *Options, tokens TokenSource, log *zap.Logger) *Client {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}
	o := *opts
	if o.BaseURL == "" {
		o.BaseURL = defaults.BaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaults.UserAgent
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = defaults.SearchTimeout
	}
	if o.LookupTimeout <= 0 {
		o.LookupTimeout = defaults.LookupTimeout
	}
	if o.VacancyRetry.Attempts <= 0 {
		o.VacancyRetry = defaults.VacancyRetry
	}
	httpClient := o.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		opts:   o,
		http:   httpClient,
		tokens: tokens,
		logger: logger.OrNop(log),
	}
}

// HasToken reports whether a credential is currently available.
func (c *Client) HasToken() bool {
	return c.tokens.Token() != ""
}

// Token returns the current credential (may be empty).
func (c *Client) Token() string {
	return c.tokens.Token()
}

// RequestURL renders the full, human-readable request URL for logging.
func (c *Client) RequestURL(path string, params url.Values) string {
	u := c.opts.BaseURL + path
	if len(params) > 0 {
		encoded := params.Encode()
		if decoded, err := url.QueryUnescape(encoded); err == nil {
			encoded = decoded
		}
		u += "?" + encoded
	}
	return u
}

// request describes one GET call.
type request struct {
	endpoint string // metric label, e.g. "resumes"
	path     string
	params   url.Values
	auth     bool
	timeout  time.Duration
}

// getJSON performs a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, req request, out any) error {
	var token string
	if req.auth {
		token = c.tokens.Token()
		if token == "" {
			return ErrMissingToken
		}
	}

	ctx, cancel := context.WithTimeout(ctx, req.timeout)
	defer cancel()

	endpointURL := c.opts.BaseURL + req.path
	if len(req.params) > 0 {
		endpointURL += "?" + req.params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return &APIError{Endpoint: req.path, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.APIRequestDuration.WithLabelValues(req.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(req.endpoint, "error").Inc()
		return &APIError{Endpoint: req.path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.APIRequestsTotal.WithLabelValues(req.endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Endpoint: req.path, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Endpoint:   req.path,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Endpoint: req.path, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
