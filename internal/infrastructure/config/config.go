package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"deltawatch/internal/domain/model"
	dsvc "deltawatch/internal/domain/service"
)

const (
	EnvAPIKey    = "DELTA_API_KEY"
	EnvAPISecret = "DELTA_API_SECRET"
)

// ErrMissingCredentials is a startup-time failure: no network call is made without both.
var ErrMissingCredentials = errors.New("config: exchange.delta api_key and api_secret are required (or set DELTA_API_KEY / DELTA_API_SECRET)")

type Config struct {
	App struct {
		Debug              bool `toml:"debug"`
		RefreshIntervalSec int  `toml:"refresh_interval_sec"` // 0 = single run
		MaxConcurrency     int  `toml:"max_concurrency"`
		Color              bool `toml:"color"`
	} `toml:"app"`

	Exchange struct {
		Delta struct {
			BaseURL    string `toml:"base_url"`
			APIKey     string `toml:"api_key"`
			APISecret  string `toml:"api_secret"`
			TimeoutSec int    `toml:"timeout_sec"`
		} `toml:"delta"`
	} `toml:"exchange"`

	Market struct {
		Symbol          string   `toml:"symbol"`
		Resolution      string   `toml:"resolution"`
		ReferenceOffset string   `toml:"reference_offset"`
		FuturePolicy    string   `toml:"future_policy"`
		Targets         []string `toml:"targets"`
	} `toml:"market"`

	Storage struct {
		Enabled bool `toml:"enabled"`

		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled       bool   `toml:"enabled"`
			Addr          string `toml:"addr"`
			Password      string `toml:"password"`
			DB            int    `toml:"db"`
			Prefix        string `toml:"prefix"`
			TTLSeconds    int    `toml:"ttl_seconds"`
			ReportStream  string `toml:"report_stream"`
			ReportChannel string `toml:"report_channel"`
			StreamMaxLen  int64  `toml:"stream_max_len"`
		} `toml:"redis"`
	} `toml:"storage"`

	// resolved by validate
	targets  []model.TimeTarget
	location *time.Location
	policy   dsvc.FuturePolicy
}

// Load reads the TOML file at path, overlays credentials from the environment
// (a .env file next to the working directory is loaded first, if present),
// applies defaults and validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.Exchange.Delta.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPISecret)); v != "" {
		cfg.Exchange.Delta.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.MaxConcurrency <= 0 {
		cfg.App.MaxConcurrency = 4
	}
	if strings.TrimSpace(cfg.Exchange.Delta.BaseURL) == "" {
		cfg.Exchange.Delta.BaseURL = "https://api.delta.exchange"
	}
	if cfg.Exchange.Delta.TimeoutSec <= 0 {
		cfg.Exchange.Delta.TimeoutSec = 10
	}
	if strings.TrimSpace(cfg.Market.Symbol) == "" {
		cfg.Market.Symbol = "BTCUSDT"
	}
	if strings.TrimSpace(cfg.Market.Resolution) == "" {
		cfg.Market.Resolution = "1m"
	}
	if strings.TrimSpace(cfg.Market.ReferenceOffset) == "" {
		cfg.Market.ReferenceOffset = "+05:30"
	}
	if len(cfg.Market.Targets) == 0 {
		cfg.Market.Targets = []string{"05:29:59", "17:29:59"}
	}
	if strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
		cfg.Storage.SQLite.Path = "data/deltawatch.db"
	}
	if strings.TrimSpace(cfg.Storage.Redis.Prefix) == "" {
		cfg.Storage.Redis.Prefix = "deltawatch"
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Exchange.Delta.APIKey) == "" || strings.TrimSpace(cfg.Exchange.Delta.APISecret) == "" {
		return ErrMissingCredentials
	}
	if t := cfg.Exchange.Delta.TimeoutSec; t < 10 || t > 15 {
		return fmt.Errorf("exchange.delta.timeout_sec must be within 10..15, got %d", t)
	}
	if cfg.App.RefreshIntervalSec < 0 {
		return errors.New("app.refresh_interval_sec must not be negative")
	}

	cfg.Market.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Market.Symbol))
	if _, err := dsvc.ParseResolution(cfg.Market.Resolution); err != nil {
		return fmt.Errorf("market.resolution: %w", err)
	}

	loc, err := dsvc.ParseOffset(cfg.Market.ReferenceOffset)
	if err != nil {
		return fmt.Errorf("market.reference_offset: %w", err)
	}
	cfg.location = loc

	policy, err := dsvc.ParseFuturePolicy(cfg.Market.FuturePolicy)
	if err != nil {
		return fmt.Errorf("market.future_policy: %w", err)
	}
	cfg.policy = policy

	targets := make([]model.TimeTarget, 0, len(cfg.Market.Targets))
	seen := map[model.TimeTarget]struct{}{}
	for _, s := range cfg.Market.Targets {
		tt, err := model.ParseTimeTarget(s)
		if err != nil {
			return fmt.Errorf("market.targets: %w", err)
		}
		if _, ok := seen[tt]; ok {
			continue
		}
		seen[tt] = struct{}{}
		targets = append(targets, tt)
	}
	cfg.targets = targets

	if cfg.Storage.SQLite.Enabled && strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
		return errors.New("storage.sqlite.path empty but enabled")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	return nil
}

// Targets returns the parsed, de-duplicated target times.
func (c *Config) Targets() []model.TimeTarget { return c.targets }

// Location returns the fixed reference zone used to interpret target times.
func (c *Config) Location() *time.Location { return c.location }

// FuturePolicy returns the policy applied to targets later than now.
func (c *Config) FuturePolicy() dsvc.FuturePolicy { return c.policy }

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Exchange.Delta.TimeoutSec) * time.Second
}

// RefreshEvery returns the auto-refresh interval; zero means a single run.
func (c *Config) RefreshEvery() time.Duration {
	return time.Duration(c.App.RefreshIntervalSec) * time.Second
}
