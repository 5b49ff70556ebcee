package headhunter

import (
	"context"
	"time"
)

// RetryConfig is a fixed-delay retry policy.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// DefaultVacancyRetry is three attempts two seconds apart.
func DefaultVacancyRetry() RetryConfig {
	return RetryConfig{Attempts: 3, Delay: 2 * time.Second}
}

// retry runs fn until it succeeds, the attempts run out or ctx is done.
// The last error is returned.
func retry(ctx context.Context, cfg RetryConfig, fn func(attempt int) error) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
