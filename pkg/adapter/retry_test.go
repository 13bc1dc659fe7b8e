package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type flakyAdapter struct {
	failures int
	err      error
	calls    int
}

func (a *flakyAdapter) Generate(_ context.Context, model string, prompt string) (*Response, error) {
	a.calls++
	if a.calls <= a.failures {
		if a.err != nil {
			return nil, a.err
		}
		return nil, &ProviderError{Provider: "flaky", Status: 429, Temporary: true, Err: fmt.Errorf("rate limit")}
	}
	return NewResponse("ok", "flaky", model), nil
}

func (a *flakyAdapter) Name() string { return "flaky" }

func (a *flakyAdapter) Models() []string { return []string{"flaky-1"} }

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, BaseBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
}

func TestRetryRecoversFromTransient(t *testing.T) {
	flaky := &flakyAdapter{failures: 2}
	wrapped := WithRetry(flaky, fastRetry(2))

	resp, err := wrapped.Generate(context.Background(), "flaky-1", "hello")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if flaky.calls != 3 {
		t.Errorf("calls = %d, want 3", flaky.calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	flaky := &flakyAdapter{failures: 10}
	wrapped := WithRetry(flaky, fastRetry(2))

	_, err := wrapped.Generate(context.Background(), "flaky-1", "hello")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Status != 429 {
		t.Errorf("err = %v, want 429 provider error", err)
	}
	if flaky.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", flaky.calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	flaky := &flakyAdapter{failures: 10, err: errors.New("invalid api key")}
	wrapped := WithRetry(flaky, fastRetry(5))

	_, err := wrapped.Generate(context.Background(), "flaky-1", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if flaky.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent error)", flaky.calls)
	}
}

func TestRetryHonorsCancelledContext(t *testing.T) {
	flaky := &flakyAdapter{failures: 10}
	wrapped := WithRetry(flaky, RetryConfig{MaxRetries: 3, BaseBackoff: 50 * time.Millisecond, MaxBackoff: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wrapped.Generate(ctx, "flaky-1", "hello")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if flaky.calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled before first retry)", flaky.calls)
	}
}

func TestRetryBackoffCapped(t *testing.T) {
	r := WithRetry(&flakyAdapter{}, RetryConfig{
		MaxRetries:  5,
		BaseBackoff: 200 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
	})

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, 1600 * time.Millisecond},
		{4, 2 * time.Second},
		{10, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := r.backoff(tt.failures); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}

func TestRetryDelegatesMetadata(t *testing.T) {
	wrapped := WithRetry(&flakyAdapter{}, DefaultRetryConfig())
	if wrapped.Name() != "flaky" {
		t.Errorf("Name() = %q", wrapped.Name())
	}
	if models := wrapped.Models(); len(models) != 1 || models[0] != "flaky-1" {
		t.Errorf("Models() = %v", models)
	}
}
