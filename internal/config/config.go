// Package config loads the tradelab YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tradelab platform.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Logging  Logging        `yaml:"logging"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	Backtest BacktestConfig `yaml:"backtest"`
	Optimize OptimizeConfig `yaml:"optimize"`
	Scan     ScanConfig     `yaml:"scan"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// BacktestConfig holds the broker simulation defaults.
type BacktestConfig struct {
	StartCash    float64 `yaml:"start_cash"`
	Commission   float64 `yaml:"commission"`
	SlippagePerc float64 `yaml:"slippage_perc"`
}

// OptimizeConfig holds the optimization run defaults.
type OptimizeConfig struct {
	UniverseLimit int     `yaml:"universe_limit"`
	Folds         int     `yaml:"folds"`
	OOSFrac       float64 `yaml:"oos_frac"`
	MinTrades     int     `yaml:"min_trades"`
	Objective     int     `yaml:"objective"` // ordinal 0-4, see optimize.Objective
	MaxResults    int     `yaml:"max_results"`
	MinBars       int     `yaml:"min_bars"`
	Workers       int     `yaml:"workers"` // 0 = one per core
}

// ScanConfig holds scanner defaults.
type ScanConfig struct {
	RRMin    float64 `yaml:"rr_min"`
	RRTarget string  `yaml:"rr_target"` // "atr", "boll_mid", or "donchian_high"
	Lookback int     `yaml:"lookback"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config populated with the built-in defaults. These match
// the reference runner: $10k starting cash, 5 bps commission and slippage,
// 3 walk-forward folds with a 20% out-of-sample window, top 50 results.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "tradelab.db",
		},
		Logging: Logging{Level: "info"},
		Backtest: BacktestConfig{
			StartCash:    10000.0,
			Commission:   0.0005,
			SlippagePerc: 0.0005,
		},
		Optimize: OptimizeConfig{
			UniverseLimit: 0,
			Folds:         3,
			OOSFrac:       0.2,
			MinTrades:     0,
			Objective:     0,
			MaxResults:    50,
			MinBars:       150,
			Workers:       0,
		},
		Scan: ScanConfig{
			RRMin:    0,
			RRTarget: "atr",
			Lookback: 30,
		},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
