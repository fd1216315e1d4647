package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MaxRetriesLimit bounds checks.max_retries; the last backoff is
// retry_unit * 2^(max_retries-1).
const MaxRetriesLimit = 10

// Config holds all application configuration. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	Clore struct {
		BaseURL        string        `yaml:"base_url"`
		APIToken       string        `yaml:"api_token"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"clore"`
	Telegram struct {
		BotToken    string        `yaml:"bot_token"`
		ChatID      string        `yaml:"chat_id"`
		MinInterval time.Duration `yaml:"min_interval"`
	} `yaml:"telegram"`
	Webhook struct {
		URL    string `yaml:"url"`
		Secret string `yaml:"secret"`
	} `yaml:"webhook"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Checks struct {
		ThresholdPct string        `yaml:"threshold_pct"`
		MaxRetries   int           `yaml:"max_retries"`
		RetryUnit    time.Duration `yaml:"retry_unit"`
		ProbeTimeout time.Duration `yaml:"probe_timeout"`
		Currency     string        `yaml:"currency"`

		Threshold decimal.Decimal `yaml:"-"` // parsed from ThresholdPct
	} `yaml:"checks"`
	Alerts struct {
		// SuppressAllClear skips the closing all-clear messages in a cycle that raised a problem.
		SuppressAllClear bool `yaml:"suppress_all_clear"`
	} `yaml:"alerts"`
	Debug struct {
		RawResponseFile string `yaml:"raw_response_file"`
		SQLitePath      string `yaml:"sqlite_path"`
	} `yaml:"debug"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; secrets may come from the environment alone.
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
	if v := os.Getenv("CLORE_API_TOKEN"); v != "" {
		cfg.Clore.APIToken = v
	}
	if v := os.Getenv("CLORE_BASE_URL"); v != "" {
		cfg.Clore.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}
	if v := os.Getenv("THRESHOLD_PCT"); v != "" {
		cfg.Checks.ThresholdPct = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Debug.SQLitePath = v
	}
	if v := os.Getenv("METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Clore.BaseURL == "" {
		cfg.Clore.BaseURL = "https://api.clore.ai"
	}
	if cfg.Clore.RequestTimeout == 0 {
		cfg.Clore.RequestTimeout = 30 * time.Second
	}
	if cfg.Telegram.MinInterval == 0 {
		cfg.Telegram.MinInterval = time.Second
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 * * * *"
	}
	if cfg.Checks.ThresholdPct == "" {
		cfg.Checks.ThresholdPct = "0.1"
	}
	if cfg.Checks.MaxRetries == 0 {
		cfg.Checks.MaxRetries = 3
	}
	if cfg.Checks.RetryUnit == 0 {
		cfg.Checks.RetryUnit = time.Second
	}
	if cfg.Checks.ProbeTimeout == 0 {
		cfg.Checks.ProbeTimeout = 5 * time.Second
	}
	if cfg.Checks.Currency == "" {
		cfg.Checks.Currency = "BTC"
	}
	if cfg.Debug.RawResponseFile == "" {
		cfg.Debug.RawResponseFile = "raw_orders_response.json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	pct, err := decimal.NewFromString(cfg.Checks.ThresholdPct)
	if err != nil {
		return nil, fmt.Errorf("parse checks.threshold_pct %q: %w", cfg.Checks.ThresholdPct, err)
	}
	cfg.Checks.Threshold = pct

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Clore.APIToken == "" {
		return fmt.Errorf("clore.api_token is required")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Checks.Threshold.IsNegative() {
		return fmt.Errorf("checks.threshold_pct must not be negative")
	}
	if c.Checks.MaxRetries < 1 || c.Checks.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("checks.max_retries must be between 1 and %d", MaxRetriesLimit)
	}
	if _, err := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	).Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", c.Schedule.Cron, err)
	}
	return nil
}
