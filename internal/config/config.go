package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CPUThreshold     float64  `yaml:"cpu_threshold"`
	CheckIntervalSec float64  `yaml:"check_interval_sec"`
	CooldownSec      int      `yaml:"cooldown_sec"`
	NotifyTimeoutSec int      `yaml:"notify_timeout_sec"`
	LogDir           string   `yaml:"log_dir"`
	RetentionDays    int      `yaml:"retention_days"`
	LogLevel         string   `yaml:"log_level"`
	Telegram         Telegram `yaml:"telegram"`
	Hooks            Hooks    `yaml:"hooks"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type Hooks struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads the optional config file, then applies environment overrides.
// Environment variables always win over the file; both are read exactly once
// at startup.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Malformed numeric values fall back to the default rather than failing
// startup; only missing credentials are fatal.
func (c *Config) applyEnv() {
	if v := os.Getenv("CPU_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CPUThreshold = f
		}
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CheckIntervalSec = f
		}
	}
	if v := os.Getenv("COOLDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CooldownSec = n
		}
	}
	if v := os.Getenv("NOTIFY_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NotifyTimeoutSec = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
}

func (c *Config) applyDefaults() {
	if c.CPUThreshold <= 0 {
		c.CPUThreshold = 50.0
	}
	if c.CheckIntervalSec <= 0 {
		c.CheckIntervalSec = 1.0
	}
	if c.CooldownSec <= 0 {
		c.CooldownSec = 600
	}
	if c.NotifyTimeoutSec <= 0 {
		c.NotifyTimeoutSec = 10
	}
	if c.LogDir == "" {
		c.LogDir = "/var/log/cpu-sentinel"
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Hooks.Dir == "" {
		c.Hooks.Dir = "/etc/cpu-sentinel/hooks"
	}
	if c.Hooks.TimeoutSec <= 0 {
		c.Hooks.TimeoutSec = 30
	}
}

func (c *Config) validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram chat id is required (TELEGRAM_CHAT_ID)")
	}
	if c.CheckIntervalSec <= 0 {
		return fmt.Errorf("check_interval_sec must be positive")
	}
	if c.CooldownSec <= 0 {
		return fmt.Errorf("cooldown_sec must be positive")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive")
	}
	if c.Hooks.Enabled && c.Hooks.TimeoutSec <= 0 {
		return fmt.Errorf("hooks.timeout_sec must be positive")
	}
	return nil
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSec * float64(time.Second))
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSec) * time.Second
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSec) * time.Second
}

func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutSec) * time.Second
}
