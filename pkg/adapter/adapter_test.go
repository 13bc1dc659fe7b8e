package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMockAdapterScripted(t *testing.T) {
	mock := NewMockAdapterWithResponses(map[string]string{
		"ping": "pong",
	}, "")

	resp, err := mock.Generate(context.Background(), "mock-1", "ping")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "pong" {
		t.Errorf("Content = %q, want pong", resp.Content)
	}
	if resp.Provider != ProviderMock || resp.Model != "mock-1" {
		t.Errorf("Provider/Model = %q/%q", resp.Provider, resp.Model)
	}

	resp, err = mock.Generate(context.Background(), "", "unscripted")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(resp.Content, "unscripted") {
		t.Errorf("Content = %q, want echo of prompt", resp.Content)
	}
	if resp.Model != "mock-1" {
		t.Errorf("Model = %q, want mock-1 default", resp.Model)
	}
	if mock.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", mock.Calls())
	}
}

func TestMockAdapterErr(t *testing.T) {
	mock := NewMockAdapter()
	mock.Err = errors.New("boom")

	if _, err := mock.Generate(context.Background(), "mock-1", "hi"); err == nil {
		t.Fatal("Generate() = nil error, want boom")
	}
}

func TestResponseHash(t *testing.T) {
	a := NewResponse("same content", "mock", "mock-1")
	b := NewResponse("same content", "mock", "mock-1")
	c := NewResponse("other content", "mock", "mock-1")

	if a.Hash != b.Hash {
		t.Errorf("identical inputs hashed differently: %q vs %q", a.Hash, b.Hash)
	}
	if a.Hash == c.Hash {
		t.Error("different content produced the same hash")
	}
	if len(a.Hash) != 16 {
		t.Errorf("len(Hash) = %d, want 16", len(a.Hash))
	}
	if a.ID == b.ID {
		t.Error("two responses share an id")
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestProviderFor(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"claude-opus-4-20250514", ProviderAnthropic},
		{"gpt-5.2-codex", ProviderOpenAI},
		{"gemini-2.0-pro", ProviderGoogle},
		{"deepseek-coder", ProviderDeepSeek},
		{"mock-1", ProviderMock},
		{"unknown-model", ""},
	}
	for _, tt := range tests {
		if got := ProviderFor(tt.model); got != tt.want {
			t.Errorf("ProviderFor(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestRegistryForModel(t *testing.T) {
	reg := NewRegistry()
	mock := NewMockAdapter()
	reg.Register(mock)

	a, err := reg.ForModel("mock-1")
	if err != nil {
		t.Fatalf("ForModel(mock-1) error = %v", err)
	}
	if a.Name() != ProviderMock {
		t.Errorf("adapter = %q, want mock", a.Name())
	}

	if _, err := reg.ForModel("claude-opus-4-20250514"); err == nil {
		t.Fatal("ForModel(claude) = nil error, want no adapter")
	}

	reg.SetFallback(mock)
	a, err = reg.ForModel("claude-opus-4-20250514")
	if err != nil {
		t.Fatalf("ForModel with fallback error = %v", err)
	}
	if a.Name() != ProviderMock {
		t.Errorf("fallback adapter = %q, want mock", a.Name())
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("nope"), false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"rate limited", &ProviderError{Provider: "deepseek", Status: 429}, true},
		{"server error", &ProviderError{Provider: "deepseek", Status: 503}, true},
		{"client error", &ProviderError{Provider: "deepseek", Status: 400}, false},
		{"temporary flag", &ProviderError{Provider: "deepseek", Temporary: true}, true},
		{"wrapped provider error", fmt.Errorf("call failed: %w", &ProviderError{Status: 500}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
