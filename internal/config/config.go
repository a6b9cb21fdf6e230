package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	MarketData struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"market_data"`
	Alerts struct {
		Cron       string            `yaml:"cron"`
		SQLitePath string            `yaml:"sqlite_path"`
		Recipients map[string]string `yaml:"recipients"` // owner -> notification address
	} `yaml:"alerts"`
	Analytics struct {
		HistoryLimit int `yaml:"history_limit"`
		SMAWindow    int `yaml:"sma_window"`
		ForecastDays int `yaml:"forecast_days"`
	} `yaml:"analytics"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		cfg.MarketData.APIKey = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_BASE_URL"); v != "" {
		cfg.MarketData.BaseURL = v
	}
	if v := os.Getenv("ALERT_CRON"); v != "" {
		cfg.Alerts.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Alerts.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.Alerts.Cron == "" {
		cfg.Alerts.Cron = "0 */5 * * * *"
	}
	if cfg.Alerts.SQLitePath == "" {
		cfg.Alerts.SQLitePath = "data/crypto_sentinel.db"
	}
	if cfg.Analytics.HistoryLimit == 0 {
		cfg.Analytics.HistoryLimit = 100
	}
	if cfg.Analytics.SMAWindow == 0 {
		cfg.Analytics.SMAWindow = 7
	}
	if cfg.Analytics.ForecastDays == 0 {
		cfg.Analytics.ForecastDays = 7
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Analytics.HistoryLimit < 2 {
		return fmt.Errorf("analytics.history_limit must be at least 2")
	}
	if c.Analytics.SMAWindow <= 0 {
		return fmt.Errorf("analytics.sma_window must be positive")
	}
	return nil
}
