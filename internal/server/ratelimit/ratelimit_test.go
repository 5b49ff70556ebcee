package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	b := newBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		ok, remaining, _, _ := b.take(start)
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}
	ok, _, reset, wait := b.take(start)
	assert.False(t, ok)
	assert.Equal(t, start.Add(3*time.Second), reset)
	assert.Equal(t, time.Second, wait)

	ok, _, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.True(t, ok, "one token refilled after a second")
	ok, _, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.False(t, ok)
}

func TestBucket_NeverExceedsCapacity(t *testing.T) {
	start := time.Now()
	b := newBucket(2, 10, start)
	ok, remaining, reset, wait := b.take(start.Add(time.Hour))
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	assert.True(t, reset.After(start.Add(time.Hour)))
	assert.Zero(t, wait)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/areas", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Empty(t, info.Route)
	}

	allowed, info := l.Allow("127.0.0.1", "/areas", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6.0, info.RetryAfter.Seconds(), 0.01)
	assert.True(t, info.ResetTime.After(clock.Now()))

	clock.Advance(7 * time.Second)
	allowed, _ = l.Allow("127.0.0.1", "/areas", "GET")
	assert.True(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	allowed, _ := l.Allow("10.0.0.1", "/areas", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/areas", "GET")
	assert.False(t, allowed)

	allowed, _ = l.Allow("10.0.0.2", "/areas", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		client  string
		allowed bool
	}{
		{"whitelisted", &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Whitelist: map[string]bool{"127.0.0.1": true}}, "127.0.0.1", true},
		{"blacklisted", &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute, Blacklist: map[string]bool{"192.168.1.1": true}}, "192.168.1.1", false},
		{"disabled", &Config{Enabled: false}, "127.0.0.1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLimiter(t, tt.cfg)
			for i := 0; i < 20; i++ {
				allowed, info := l.Allow(tt.client, "/search", "POST")
				require.Equal(t, tt.allowed, allowed)
				assert.Zero(t, info.Limit)
			}
		})
	}
}

func TestLimiter_TemplatedRouteSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/vacancies/{id}/keywords", Method: "POST", Limit: 2, Window: time.Hour},
		},
	})

	allowed, info := l.Allow("127.0.0.1", "/vacancies/1/keywords", "POST")
	require.True(t, allowed)
	assert.Equal(t, "POST /vacancies/{id}/keywords", info.Route)
	allowed, _ = l.Allow("127.0.0.1", "/vacancies/2/keywords", "POST")
	require.True(t, allowed)

	allowed, info = l.Allow("127.0.0.1", "/vacancies/3/keywords", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)

	allowed, info = l.Allow("127.0.0.1", "/vacancies/3", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_Burst(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    10,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []EndpointConfig{{Path: "/search", Method: "POST", Limit: 60, Window: time.Minute, Burst: 5}},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/search", "POST")
		require.True(t, allowed, "burst request %d", i+1)
	}
	allowed, info := l.Allow("127.0.0.1", "/search", "POST")
	assert.False(t, allowed)
	assert.InDelta(t, 1.0, info.RetryAfter.Seconds(), 0.01)
}

func TestLimiter_ExemptRoutes(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("127.0.0.1", "/metrics", "GET")
		require.True(t, allowed)
	}
	assert.Zero(t, l.size())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var allowedCount atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/areas", "GET"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTimeout: time.Hour})

	l.Allow("10.0.0.1", "/areas", "GET")
	clock.Advance(40 * time.Minute)
	l.Allow("10.0.0.2", "/areas", "GET")
	require.Equal(t, 2, l.size())

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 1, l.cleanup())
	assert.Equal(t, 1, l.size())
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l, _ := newTestLimiter(t, nil)

	allowed, info := l.Allow("127.0.0.1", "/areas", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(60, 30)
	tests := []struct {
		method, path string
		want         string // "" means no match, "exempt" the unlimited rule
	}{
		{"GET", "/health", "exempt"},
		{"GET", "/metrics", "exempt"},
		{"POST", "/search", "/search"},
		{"POST", "/search/stream", "/search/stream"},
		{"POST", "/search/legacy", "/search/legacy"},
		{"GET", "/search", ""},
		{"POST", "/vacancies/123/keywords", "/vacancies/{id}/keywords"},
		{"POST", "/vacancies//keywords", ""},
		{"GET", "/vacancies", "/vacancies"},
		{"GET", "/vacancies/123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			switch tt.want {
			case "":
				assert.Nil(t, got)
			case "exempt":
				require.NotNil(t, got)
				assert.Zero(t, got.Limit)
			default:
				require.NotNil(t, got)
				assert.Equal(t, tt.want, got.Path)
			}
		})
	}
}

func TestMatchEndpoint_Prefix(t *testing.T) {
	configs := []EndpointConfig{{Path: "/admin/", Method: "DELETE", Limit: 1, Window: time.Minute}}
	assert.NotNil(t, MatchEndpoint("/admin/cache/x", "DELETE", configs))
	assert.Nil(t, MatchEndpoint("/admin/cache/x", "GET", configs))
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvEnabled, "")
		t.Setenv(EnvSearchLimit, "")
		cfg := LoadConfig()
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 600, cfg.DefaultLimit)
		rule := MatchEndpoint("/search", "POST", cfg.EndpointConfigs)
		require.NotNil(t, rule)
		assert.Equal(t, DefaultSearchPerMinute, rule.Limit)
		assert.Equal(t, 10, rule.Burst)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv(EnvSearchLimit, "12")
		t.Setenv(EnvExtractLimit, "not-a-number")
		t.Setenv(EnvWhitelist, " 10.0.0.1 , ,10.0.0.2")
		cfg := LoadConfig()
		assert.Equal(t, 12, MatchEndpoint("/search", "POST", cfg.EndpointConfigs).Limit)
		assert.Equal(t, DefaultExtractPerHour, MatchEndpoint("/vacancies/1/keywords", "POST", cfg.EndpointConfigs).Limit)
		assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Setenv(EnvEnabled, "false")
		assert.False(t, LoadConfig().Enabled)
	})
}
