package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Alpaca struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"alpaca"`
	Fund struct {
		CheckpointFile string  `yaml:"checkpoint_file"`
		TargetRatio    float64 `yaml:"target_ratio"`
		HorizonDays    int     `yaml:"horizon_days"`
	} `yaml:"fund"`
	Schedule struct {
		PollSeconds int    `yaml:"poll_seconds"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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

	// Environment variable overrides
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CHECKPOINT_FILE"); v != "" {
		cfg.Fund.CheckpointFile = v
	}
	if v := os.Getenv("TARGET_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fund.TargetRatio = ratio
		}
	}
	if v := os.Getenv("HORIZON_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Fund.HorizonDays = days
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Alpaca.BaseURL == "" {
		cfg.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if cfg.Fund.CheckpointFile == "" {
		cfg.Fund.CheckpointFile = "data/checkpoint.json"
	}
	if cfg.Fund.TargetRatio == 0 {
		cfg.Fund.TargetRatio = 1.0
	}
	if cfg.Fund.HorizonDays == 0 {
		cfg.Fund.HorizonDays = 365
	}
	if cfg.Schedule.PollSeconds == 0 {
		cfg.Schedule.PollSeconds = 10
	}
	if cfg.Schedule.ReportCron == "" {
		// Weekdays after the US session close.
		cfg.Schedule.ReportCron = "0 0 17 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/portfolio_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are sensible.
func (c *Config) Validate() error {
	if c.Fund.TargetRatio < 0 || c.Fund.TargetRatio > 1 {
		return fmt.Errorf("fund.target_ratio must be within [0, 1]")
	}
	if c.Fund.HorizonDays <= 0 {
		return fmt.Errorf("fund.horizon_days must be positive")
	}
	if c.Schedule.PollSeconds <= 0 {
		return fmt.Errorf("schedule.poll_seconds must be positive")
	}
	return nil
}
