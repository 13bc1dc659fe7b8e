package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/helmsman/pkg/adapter"
	"github.com/zen-systems/helmsman/pkg/router"
)

// RoutingConfig holds the routing behavior configuration.
type RoutingConfig struct {
	Strategy   string          `yaml:"strategy,omitempty"`
	Tiers      router.Tiers    `yaml:"tiers,omitempty"`
	Candidates []string        `yaml:"candidates,omitempty"`
	MatrixPath string          `yaml:"matrix_path,omitempty"`
	Debug      bool            `yaml:"debug,omitempty"`
	Retry      RetryConfig     `yaml:"retry,omitempty"`
	Pricing    PricingTable    `yaml:"pricing,omitempty"`
	Server     ServerConfig    `yaml:"server,omitempty"`
	Analytics  AnalyticsConfig `yaml:"analytics,omitempty"`
}

// RetryConfig defines retry and backoff behavior for provider calls.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty"`
}

// AdapterConfig converts the file shape into the adapter retry policy.
func (r RetryConfig) AdapterConfig() adapter.RetryConfig {
	return adapter.RetryConfig{
		MaxRetries:  r.MaxRetries,
		BaseBackoff: time.Duration(r.BaseBackoffMs) * time.Millisecond,
		MaxBackoff:  time.Duration(r.MaxBackoffMs) * time.Millisecond,
	}
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr               string  `yaml:"addr,omitempty"`
	ReadTimeoutSec     int     `yaml:"read_timeout_sec,omitempty"`
	WriteTimeoutSec    int     `yaml:"write_timeout_sec,omitempty"`
	ShutdownTimeoutSec int     `yaml:"shutdown_timeout_sec,omitempty"`
	RatePerSec         float64 `yaml:"rate_per_sec,omitempty"`
	Burst              int     `yaml:"burst,omitempty"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

// AnalyticsConfig controls the decision history store.
type AnalyticsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// IsEnabled reports whether decision recording is on. Defaults to true.
func (a AnalyticsConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{}
	applyRoutingDefaults(cfg)
	return cfg
}

// Validate checks that the config describes a usable router.
func (c *RoutingConfig) Validate() error {
	switch c.Strategy {
	case router.StrategyAuto, router.StrategyScored, router.StrategyKeyword:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Tiers.Fast == "" || c.Tiers.Balanced == "" || c.Tiers.Code == "" || c.Tiers.Quality == "" {
		return fmt.Errorf("tiers must name a model for fast, balanced, code and quality")
	}
	if c.Server.RatePerSec < 0 {
		return fmt.Errorf("server rate_per_sec must not be negative")
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.WriteTimeoutSec < 0 || c.Server.ShutdownTimeoutSec < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	return nil
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if cfg.Strategy == "" {
		cfg.Strategy = router.StrategyAuto
	}
	defaults := router.DefaultTiers()
	if cfg.Tiers.Fast == "" {
		cfg.Tiers.Fast = defaults.Fast
	}
	if cfg.Tiers.Balanced == "" {
		cfg.Tiers.Balanced = defaults.Balanced
	}
	if cfg.Tiers.Code == "" {
		cfg.Tiers.Code = defaults.Code
	}
	if cfg.Tiers.Quality == "" {
		cfg.Tiers.Quality = defaults.Quality
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}
	if cfg.Pricing == nil {
		cfg.Pricing = DefaultPricing()
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSec == 0 {
		cfg.Server.ReadTimeoutSec = 15
	}
	if cfg.Server.WriteTimeoutSec == 0 {
		// SSE responses stream provider output; keep the window generous.
		cfg.Server.WriteTimeoutSec = 120
	}
	if cfg.Server.ShutdownTimeoutSec == 0 {
		cfg.Server.ShutdownTimeoutSec = 10
	}
	if cfg.Server.RatePerSec == 0 {
		cfg.Server.RatePerSec = 10
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 20
	}
}
