package headhunter

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVacancy_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vacancies/123", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id": "123", "name": "Data Engineer", "description": "<p>Python</p>", "experience": {"id": "between3And6", "name": "3–6 лет"}}`))
	}, "")

	vacancy, err := client.Vacancy(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Data Engineer", vacancy.Name)
	assert.Equal(t, "<p>Python</p>", vacancy.Description)
	assert.Equal(t, "3–6 лет", vacancy.ExperienceName())
}

func TestVacancy_FailedDecodeLeavesNoFieldsBehind(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"id": "123", "name": "Stale", "alternate_url": "https://hh.ru/vacancy/old", "description": 5}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "123", "name": "Data Engineer"}`))
	}, "")

	vacancy, err := client.Vacancy(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "Data Engineer", vacancy.Name)
	assert.Empty(t, vacancy.AlternateURL)
	assert.Empty(t, vacancy.Description)
}

func TestVacancy_GivesUpAfterAttempts(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, "")

	_, err := client.Vacancy(context.Background(), "404")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, RetryConfig{Attempts: 5, Delay: time.Hour}, func(int) error {
		calls++
		cancel()
		return assert.AnError
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
