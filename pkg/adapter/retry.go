package adapter

import (
	"context"
	"time"
)

// RetryConfig bounds the retry loop around Generate calls.
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryConfig returns the stock policy: two retries, 200ms base
// backoff, 2s cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		BaseBackoff: 200 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
	}
}

// RetryAdapter wraps another adapter and retries transient failures with
// exponential backoff. Non-transient errors return immediately.
type RetryAdapter struct {
	inner Adapter
	cfg   RetryConfig
}

// WithRetry wraps an adapter in a retry policy.
func WithRetry(inner Adapter, cfg RetryConfig) *RetryAdapter {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	return &RetryAdapter{inner: inner, cfg: cfg}
}

// Name returns the wrapped adapter's identifier.
func (r *RetryAdapter) Name() string {
	return r.inner.Name()
}

// Models returns the wrapped adapter's model list.
func (r *RetryAdapter) Models() []string {
	return r.inner.Models()
}

// Generate calls the wrapped adapter, retrying transient errors up to
// MaxRetries times.
func (r *RetryAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, r.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := r.inner.Generate(ctx, model, prompt)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// backoff doubles the base delay per prior failure, capped at MaxBackoff.
func (r *RetryAdapter) backoff(failures int) time.Duration {
	backoff := r.cfg.BaseBackoff
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= r.cfg.MaxBackoff {
			return r.cfg.MaxBackoff
		}
	}
	if backoff > r.cfg.MaxBackoff {
		return r.cfg.MaxBackoff
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
