// Package adapter normalizes LLM providers behind one Generate call.
// Each provider returns the same Response shape, so the rest of the
// system never deals with provider specific payloads.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Provider names used for registration and model resolution.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderDeepSeek  = "deepseek"
	ProviderMock      = "mock"
)

// Adapter is the interface every LLM provider implements.
type Adapter interface {
	// Generate sends a prompt to the model and returns the response.
	Generate(ctx context.Context, model string, prompt string) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// ProviderFor returns the provider name implied by a model id, or ""
// when the id matches no known family.
func ProviderFor(model string) string {
	switch {
	case strings.HasPrefix(model, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gpt"):
		return ProviderOpenAI
	case strings.HasPrefix(model, "gemini"):
		return ProviderGoogle
	case strings.HasPrefix(model, "deepseek"):
		return ProviderDeepSeek
	case strings.HasPrefix(model, "mock"):
		return ProviderMock
	default:
		return ""
	}
}

// Registry holds the registered adapters and resolves models to them.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own name.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// SetFallback sets the adapter used when no provider matches a model.
// Mock runs use this to answer every model id locally.
func (r *Registry) SetFallback(a Adapter) {
	r.fallback = a
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered adapter names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForModel resolves a model id to the adapter that serves it.
func (r *Registry) ForModel(model string) (Adapter, error) {
	if a, ok := r.adapters[ProviderFor(model)]; ok {
		return a, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no adapter registered for model %q", model)
}
