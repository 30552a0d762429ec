// Package config loads and validates the application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
)

// AssetConfig declares one tradeable asset.
type AssetConfig struct {
	ID       string `mapstructure:"id"`
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Config is the full application configuration.
type Config struct {
	RPCEndpoint      string        `mapstructure:"rpc_endpoint"`
	OracleURL        string        `mapstructure:"oracle_url"`
	PostgresURL      string        `mapstructure:"postgres_url"`
	DebounceMs       int           `mapstructure:"debounce_ms"`
	FetchTimeoutMs   int           `mapstructure:"fetch_timeout_ms"`
	Retries          int           `mapstructure:"retries"`
	SlippagePercent  float64       `mapstructure:"slippage_percent"`
	MaxImpactPercent float64       `mapstructure:"max_impact_percent"`
	DeadlineMinutes  int           `mapstructure:"deadline_minutes"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFile          string        `mapstructure:"log_file"`
	Development      bool          `mapstructure:"development"`
	DemoMode         bool          `mapstructure:"demo_mode"`
	Assets           []AssetConfig `mapstructure:"assets"`
}

const (
	DefaultDebounceMs      = 400
	DefaultFetchTimeoutMs  = 10000
	DefaultRetries         = 3
	DefaultSlippagePct     = 0.5
	DefaultMaxImpactPct    = 15.0
	DefaultDeadlineMinutes = 15
)

// Load reads the config file at path and applies env overrides (prefix
// SWAPDECK_).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"debounce_ms":        DefaultDebounceMs,
		"fetch_timeout_ms":   DefaultFetchTimeoutMs,
		"retries":            DefaultRetries,
		"slippage_percent":   DefaultSlippagePct,
		"max_impact_percent": DefaultMaxImpactPct,
		"deadline_minutes":   DefaultDeadlineMinutes,
		"log_level":          "info",
		"log_file":           "logs/swapdeck.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("SWAPDECK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	if !cfg.DemoMode {
		if cfg.RPCEndpoint == "" {
			return errors.New("missing rpc_endpoint in configuration")
		}
		if err := validateURL(cfg.RPCEndpoint, "http"); err != nil {
			return fmt.Errorf("invalid rpc_endpoint: %w", err)
		}
	}
	if cfg.OracleURL != "" {
		if err := validateURL(cfg.OracleURL, "http"); err != nil {
			return fmt.Errorf("invalid oracle_url: %w", err)
		}
	}
	if cfg.DebounceMs <= 0 {
		return errors.New("invalid debounce_ms")
	}
	if cfg.FetchTimeoutMs <= 0 {
		return errors.New("invalid fetch_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.SlippagePercent < 0 || cfg.SlippagePercent >= 100 {
		return errors.New("invalid slippage_percent")
	}
	if cfg.DeadlineMinutes <= 0 {
		return errors.New("invalid deadline_minutes")
	}
	if len(cfg.Assets) < 2 {
		return errors.New("at least two assets must be configured")
	}
	for _, a := range cfg.Assets {
		if _, err := asset.ParseID(a.ID); err != nil {
			return fmt.Errorf("asset %s: %w", a.Symbol, err)
		}
	}
	return nil
}

func validateURL(raw, scheme string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(u.Scheme, scheme) {
		return fmt.Errorf("unexpected scheme %q", u.Scheme)
	}
	return nil
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// FetchTimeout returns the per-read timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// Deadline returns the transaction deadline window.
func (c *Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineMinutes) * time.Minute
}

// Slippage converts the configured percentage to the fraction the engines
// expect (0.5% -> 0.005).
func (c *Config) Slippage() fixedpoint.FixedPoint {
	return fixedpoint.MustFromString(
		fmt.Sprintf("%g", c.SlippagePercent/100))
}

// MaxImpact returns the price-impact ceiling as a percent value.
func (c *Config) MaxImpact() fixedpoint.FixedPoint {
	return fixedpoint.MustFromString(fmt.Sprintf("%g", c.MaxImpactPercent))
}

// AssetList materializes the configured assets, applying the default
// decimals where unspecified.
func (c *Config) AssetList() []asset.Asset {
	out := make([]asset.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		out = append(out, asset.New(asset.ID(strings.ToLower(a.ID)), a.Symbol, a.Decimals))
	}
	return out
}
