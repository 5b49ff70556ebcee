package headhunter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts := DefaultOptions()
	opts.BaseURL = server.URL
	opts.VacancyRetry = RetryConfig{Attempts: 3, Delay: time.Millisecond}
	return New(opts, StaticToken(token), nil)
}

func TestSearchResumes_SendsHeadersAndParams(t *testing.T) {
	var gotAuth, gotUA, gotText, gotPage string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resumes", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotText = r.URL.Query().Get("text")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"found": 2, "pages": 1, "page": 0, "per_page": 20, "items": [{"id": "a"}, {"id": 7}]}`))
	}, "secret")

	params := url.Values{}
	params.Set("text", `"Data Engineer" AND (Python)`)
	params.Set("page", "0")

	page, err := client.SearchResumes(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, `"Data Engineer" AND (Python)`, gotText)
	assert.Equal(t, "0", gotPage)
	assert.Equal(t, 2, page.Found)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].ID)
	assert.Equal(t, "7", page.Items[1].ID)
}

func TestSearchResumes_MissingTokenMakesNoCall(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}, "  ")

	_, err := client.SearchResumes(context.Background(), url.Values{})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.False(t, client.HasToken())
}

func TestSearchResumes_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"type":"forbidden"}]}`))
	}, "secret")

	_, err := client.SearchResumes(context.Background(), url.Values{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "/resumes", apiErr.Endpoint)
	assert.Contains(t, err.Error(), "403")
}

func TestSearchResumes_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, "secret")

	_, err := client.SearchResumes(context.Background(), url.Values{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "decode")
}

func TestSearchResumes_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	opts.SearchTimeout = 20 * time.Millisecond
	client := New(opts, StaticToken("secret"), nil)

	_, err := client.SearchResumes(context.Background(), url.Values{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestURL_IsReadable(t *testing.T) {
	client := New(&Options{BaseURL: "https://api.example.test/"}, nil, nil)
	params := url.Values{}
	params.Set("text", "Go AND Kafka")
	assert.Equal(t, "https://api.example.test/resumes?text=Go AND Kafka", client.RequestURL("/resumes", params))
	assert.Equal(t, "https://api.example.test/me", client.RequestURL("/me", nil))
}

func TestEnvToken(t *testing.T) {
	t.Setenv("TEST_HH_TOKEN", " tok ")
	assert.Equal(t, "tok", EnvToken("TEST_HH_TOKEN").Token())

	t.Setenv("TEST_HH_TOKEN", "")
	assert.Equal(t, "", EnvToken("TEST_HH_TOKEN").Token())
}

func TestNew_Defaults(t *testing.T) {
	client := New(nil, nil, nil)
	assert.Equal(t, DefaultBaseURL, client.opts.BaseURL)
	assert.Equal(t, DefaultUserAgent, client.opts.UserAgent)
	assert.Equal(t, DefaultSearchTimeout, client.opts.SearchTimeout)
	assert.Equal(t, DefaultLookupTimeout, client.opts.LookupTimeout)
	assert.Equal(t, 3, client.opts.VacancyRetry.Attempts)
}
