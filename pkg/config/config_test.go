package config

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/zen-systems/helmsman/pkg/router"
)

func TestConfigUsesFileAPIKeysWhenEnvUnset(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".helmsman")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	data := []byte("api_keys:\n  anthropic: file-ant\n  openai: file-openai\n  google: file-google\n  deepseek: file-deepseek\n")
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "file-ant" || cfg.OpenAIAPIKey != "file-openai" {
		t.Fatalf("expected file API keys to be used when env is unset")
	}
}

func TestConfigUsesEnvAPIKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("DEEPSEEK_API_KEY", "env-deepseek")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-ant" || cfg.OpenAIAPIKey != "env-openai" || cfg.GoogleAPIKey != "env-google" || cfg.DeepSeekAPIKey != "env-deepseek" {
		t.Fatalf("expected env API keys to be used")
	}
	if !cfg.HasAdapter("anthropic") || cfg.HasAdapter("unknown") {
		t.Fatalf("HasAdapter mismatch")
	}
}

func TestLoadUsesDefaultRoutingWhenFileMissing(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Routing == nil {
		t.Fatal("expected default routing config")
	}
	if cfg.Routing.Strategy != router.StrategyAuto {
		t.Errorf("default strategy = %q, want %q", cfg.Routing.Strategy, router.StrategyAuto)
	}
	if cfg.Routing.Tiers != router.DefaultTiers() {
		t.Errorf("default tiers = %+v", cfg.Routing.Tiers)
	}
}

func TestDefaultRoutingConfig(t *testing.T) {
	cfg := DefaultRoutingConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Strategy != router.StrategyAuto {
		t.Errorf("strategy = %q, want auto", cfg.Strategy)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.RatePerSec != 10 || cfg.Server.Burst != 20 {
		t.Errorf("rate limit defaults = %v/%d", cfg.Server.RatePerSec, cfg.Server.Burst)
	}
	if cfg.Pricing == nil {
		t.Error("expected default pricing table")
	}
	if !cfg.Analytics.IsEnabled() {
		t.Error("analytics should default to enabled")
	}
}

func TestLoadRoutingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")

	content := `strategy: scored
candidates:
  - gpt-5.2-codex
  - claude-opus-4-20250514
tiers:
  code: deepseek-coder
debug: true
server:
  addr: ":9000"
  rate_per_sec: 2
analytics:
  enabled: false
  path: /tmp/custom.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRoutingConfig(path)
	if err != nil {
		t.Fatalf("LoadRoutingConfig() error = %v", err)
	}

	if cfg.Strategy != router.StrategyScored {
		t.Errorf("strategy = %q, want scored", cfg.Strategy)
	}
	if len(cfg.Candidates) != 2 || cfg.Candidates[0] != "gpt-5.2-codex" {
		t.Errorf("candidates = %v", cfg.Candidates)
	}
	if cfg.Tiers.Code != "deepseek-coder" {
		t.Errorf("code tier = %q, want deepseek-coder", cfg.Tiers.Code)
	}
	// Unset tiers are backfilled from the defaults.
	if cfg.Tiers.Fast != router.DefaultTiers().Fast {
		t.Errorf("fast tier = %q, want default", cfg.Tiers.Fast)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RatePerSec != 2 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.Burst != 20 {
		t.Errorf("burst should default to 20, got %d", cfg.Server.Burst)
	}
	if cfg.Analytics.IsEnabled() {
		t.Error("analytics should be disabled")
	}
	if cfg.Analytics.Path != "/tmp/custom.db" {
		t.Errorf("analytics path = %q", cfg.Analytics.Path)
	}
}

func TestLoadRoutingConfigRejectsUnknownStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routing.yaml")
	if err := os.WriteFile(path, []byte("strategy: llm\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRoutingConfig(path); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestRoutingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RoutingConfig)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*RoutingConfig) {},
			wantErr: false,
		},
		{
			name:    "unknown strategy",
			mutate:  func(c *RoutingConfig) { c.Strategy = "vibes" },
			wantErr: true,
		},
		{
			name:    "missing tier",
			mutate:  func(c *RoutingConfig) { c.Tiers.Quality = "" },
			wantErr: true,
		},
		{
			name:    "negative rate",
			mutate:  func(c *RoutingConfig) { c.Server.RatePerSec = -1 },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *RoutingConfig) { c.Server.ReadTimeoutSec = -5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRoutingConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryDefaults(t *testing.T) {
	cfg := DefaultRoutingConfig()

	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseBackoffMs != 200 || cfg.Retry.MaxBackoffMs != 2000 {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}

	ac := cfg.Retry.AdapterConfig()
	if ac.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d", ac.MaxRetries)
	}
	if ac.BaseBackoff != 200*time.Millisecond || ac.MaxBackoff != 2*time.Second {
		t.Errorf("backoff = %v/%v", ac.BaseBackoff, ac.MaxBackoff)
	}
}

func TestRetryMaxBackoffRaisedToBase(t *testing.T) {
	cfg := &RoutingConfig{Retry: RetryConfig{BaseBackoffMs: 500, MaxBackoffMs: 100}}
	applyRoutingDefaults(cfg)
	if cfg.Retry.MaxBackoffMs != 500 {
		t.Errorf("MaxBackoffMs = %d, want 500", cfg.Retry.MaxBackoffMs)
	}
}

func TestAnalyticsPath(t *testing.T) {
	cfg := &Config{ConfigDir: "/home/u/.helmsman", Routing: DefaultRoutingConfig()}
	if got := cfg.AnalyticsPath(); got != filepath.Join("/home/u/.helmsman", "history.db") {
		t.Errorf("AnalyticsPath() = %q", got)
	}

	cfg.Routing.Analytics.Path = "/var/lib/helmsman.db"
	if got := cfg.AnalyticsPath(); got != "/var/lib/helmsman.db" {
		t.Errorf("explicit path should win, got %q", got)
	}
}

func TestPricingEstimate(t *testing.T) {
	pricing := DefaultPricing()

	tests := []struct {
		name       string
		provider   string
		model      string
		prompt     int
		completion int
		wantAmount float64
		wantOK     bool
	}{
		{
			name:       "known model",
			provider:   "openai",
			model:      "gpt-5.2-instant",
			prompt:     1000,
			completion: 1000,
			wantAmount: 0.002,
			wantOK:     true,
		},
		{
			name:       "unknown model falls back to provider default",
			provider:   "openai",
			model:      "gpt-9-experimental",
			prompt:     1000,
			completion: 1000,
			wantAmount: 0.01,
			wantOK:     true,
		},
		{
			name:       "unknown provider",
			provider:   "acme",
			model:      "acme-1",
			prompt:     1000,
			completion: 1000,
			wantOK:     false,
		},
		{
			name:       "zero usage",
			provider:   "anthropic",
			model:      "claude-opus-4-20250514",
			prompt:     0,
			completion: 0,
			wantAmount: 0,
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, ok := pricing.Estimate(tt.provider, tt.model, tt.prompt, tt.completion)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(cost.Amount-tt.wantAmount) > 1e-9 {
				t.Errorf("amount = %v, want %v", cost.Amount, tt.wantAmount)
			}
			if cost.Currency != "USD" || !cost.Estimate {
				t.Errorf("cost = %+v", cost)
			}
		})
	}
}

func TestPricingEstimateNilTable(t *testing.T) {
	var pricing PricingTable
	if _, ok := pricing.Estimate("openai", "gpt-5.2-instant", 100, 100); ok {
		t.Fatal("nil table should not price anything")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
