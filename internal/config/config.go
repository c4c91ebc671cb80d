package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		Listen            string `yaml:"listen"`
		SQLitePath        string `yaml:"sqlite_path"`
		DefaultCommodity  string `yaml:"default_commodity"`
		MaxHorizon        int    `yaml:"max_horizon"`
		ForecastCacheSize int    `yaml:"forecast_cache_size"`
		Seed              uint64 `yaml:"seed"`
	} `yaml:"api"`
	Dashboard struct {
		Listen         string `yaml:"listen"`
		APIBaseURL     string `yaml:"api_base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		SQLitePath     string `yaml:"sqlite_path"`
	} `yaml:"dashboard"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// LoadDotEnv loads variables from a .env file into the environment if it exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AGRIPRICE_API_LISTEN"); v != "" {
		c.API.Listen = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.API.SQLitePath = v
	}
	if v := os.Getenv("AGRIPRICE_DASHBOARD_LISTEN"); v != "" {
		c.Dashboard.Listen = v
	}
	if v := os.Getenv("AGRIPRICE_API_URL"); v != "" {
		c.Dashboard.APIBaseURL = v
	}
	if v := os.Getenv("DASHBOARD_SQLITE_PATH"); v != "" {
		c.Dashboard.SQLitePath = v
	}
	if v := os.Getenv("AGRIPRICE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Dashboard.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		c.Schedule.DigestCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.API.Listen == "" {
		c.API.Listen = ":5000"
	}
	if c.API.SQLitePath == "" {
		c.API.SQLitePath = "data/prices.db"
	}
	if c.API.DefaultCommodity == "" {
		c.API.DefaultCommodity = "Wheat"
	}
	if c.API.MaxHorizon == 0 {
		c.API.MaxHorizon = 12
	}
	if c.API.ForecastCacheSize == 0 {
		c.API.ForecastCacheSize = 128
	}
	if c.Dashboard.Listen == "" {
		c.Dashboard.Listen = ":3000"
	}
	if c.Dashboard.APIBaseURL == "" {
		c.Dashboard.APIBaseURL = "http://localhost:5000"
	}
	if c.Dashboard.TimeoutSeconds == 0 {
		c.Dashboard.TimeoutSeconds = 30
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 8 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Timeout is the dashboard's per-request timeout for calls to the API.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Dashboard.TimeoutSeconds) * time.Second
}

// TelegramEnabled reports whether digest delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ValidateAPI checks the fields the prices API needs.
func (c *Config) ValidateAPI() error {
	if c.API.Listen == "" {
		return fmt.Errorf("api.listen is required")
	}
	if c.API.MaxHorizon < 1 {
		return fmt.Errorf("api.max_horizon must be positive")
	}
	if c.API.ForecastCacheSize < 1 {
		return fmt.Errorf("api.forecast_cache_size must be positive")
	}
	return nil
}

// ValidateDashboard checks the fields the dashboard needs.
func (c *Config) ValidateDashboard() error {
	if c.Dashboard.APIBaseURL == "" {
		return fmt.Errorf("dashboard.api_base_url is required")
	}
	if c.Dashboard.TimeoutSeconds < 1 {
		return fmt.Errorf("dashboard.timeout_seconds must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
