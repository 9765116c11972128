package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockCast/internal/errs"
)

// WatchJob is a prompt forecast on a cron schedule.
type WatchJob struct {
	Name   string `yaml:"name"`
	Cron   string `yaml:"cron"`
	Prompt string `yaml:"prompt"`
}

// Config holds all application configuration.
type Config struct {
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	DataSource struct {
		Provider          string `yaml:"provider"` // "yahoo" or "rest"
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		LookbackDays      int    `yaml:"lookback_days"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"data_source"`
	Forecast struct {
		InputWindow  int     `yaml:"input_window"` // 0 derives it from the series length
		MaxSteps     int     `yaml:"max_steps"`
		LearningRate float64 `yaml:"learning_rate"`
	} `yaml:"forecast"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watch    []WatchJob `yaml:"watch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file in the working directory, then
// applies environment variable overrides and defaults. A missing YAML file is not an error.
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

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FORECAST_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &errs.ConfigurationError{Field: "FORECAST_MAX_STEPS", Reason: err.Error()}
		}
		cfg.Forecast.MaxSteps = n
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 365
	}
	if cfg.Forecast.MaxSteps == 0 {
		cfg.Forecast.MaxSteps = 200
	}
	if cfg.Forecast.LearningRate == 0 {
		cfg.Forecast.LearningRate = 0.5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return &errs.ConfigurationError{Field: "data_source.base_url", Reason: "is required for the rest provider"}
		}
	default:
		return &errs.ConfigurationError{Field: "data_source.provider", Reason: fmt.Sprintf("unknown provider %q", c.DataSource.Provider)}
	}
	if c.DataSource.LookbackDays < 0 {
		return &errs.ConfigurationError{Field: "data_source.lookback_days", Reason: "must not be negative"}
	}
	if c.DataSource.RequestsPerMinute < 0 {
		return &errs.ConfigurationError{Field: "data_source.requests_per_minute", Reason: "must not be negative"}
	}
	if c.Forecast.InputWindow < 0 {
		return &errs.ConfigurationError{Field: "forecast.input_window", Reason: "must not be negative"}
	}
	if c.Forecast.MaxSteps < 0 {
		return &errs.ConfigurationError{Field: "forecast.max_steps", Reason: "must not be negative"}
	}
	if c.Forecast.LearningRate < 0 {
		return &errs.ConfigurationError{Field: "forecast.learning_rate", Reason: "must not be negative"}
	}
	return nil
}

// ValidateLLM checks that prompt-driven commands can reach the language model.
func (c *Config) ValidateLLM() error {
	if c.OpenAI.APIKey == "" {
		return &errs.ConfigurationError{Field: "openai.api_key", Reason: "is required (set OPENAI_API_KEY)"}
	}
	return nil
}

// ValidateTelegram checks the settings watch mode needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return &errs.ConfigurationError{Field: "telegram.bot_token", Reason: "is required"}
	}
	if c.Telegram.ChatID == "" {
		return &errs.ConfigurationError{Field: "telegram.chat_id", Reason: "is required"}
	}
	for i, j := range c.Watch {
		if j.Name == "" || j.Cron == "" || j.Prompt == "" {
			return &errs.ConfigurationError{Field: fmt.Sprintf("watch[%d]", i), Reason: "name, cron and prompt are required"}
		}
	}
	return nil
}
