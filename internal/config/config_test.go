package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/errs"
)

var envKeys = []string{
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"MARKET_DATA_BASE_URL", "MARKET_DATA_API_KEY",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"HTTPS_PROXY", "SQLITE_PATH", "LOG_LEVEL", "FORECAST_MAX_STEPS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 365, cfg.DataSource.LookbackDays)
	assert.Equal(t, 200, cfg.Forecast.MaxSteps)
	assert.Equal(t, 0.5, cfg.Forecast.LearningRate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
openai:
  api_key: sk-file
  model: gpt-4o
data_source:
  base_url: http://bars.local
  requests_per_minute: 30
forecast:
  input_window: 20
  max_steps: 50
watch:
  - name: qcom
    cron: "0 0 22 * * 1-5"
    prompt: Forecast QCOM for 5 days
database:
  sqlite_path: runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 30, cfg.DataSource.RequestsPerMinute)
	assert.Equal(t, 20, cfg.Forecast.InputWindow)
	assert.Equal(t, 50, cfg.Forecast.MaxSteps)
	require.Len(t, cfg.Watch, 1)
	assert.Equal(t, "qcom", cfg.Watch[0].Name)
	assert.Equal(t, "runs.db", cfg.Database.SQLitePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "openai:\n  api_key: sk-file\n")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("FORECAST_MAX_STEPS", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, 75, cfg.Forecast.MaxSteps)
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "openai: [unclosed"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("FORECAST_MAX_STEPS", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.DataSource.Provider = "bloomberg"
	err = cfg.Validate()
	var ce *errs.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "data_source.provider", ce.Field)

	cfg.DataSource.Provider = "rest"
	assert.Error(t, cfg.Validate())
	cfg.DataSource.BaseURL = "http://bars.local"
	assert.NoError(t, cfg.Validate())

	cfg.Forecast.LearningRate = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateLLM(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateLLM()
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.ValidateLLM())
}

func TestValidateTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateTelegram())
	cfg.Telegram.BotToken = "TOKEN"
	cfg.Telegram.ChatID = "42"
	assert.NoError(t, cfg.ValidateTelegram())

	cfg.Watch = []WatchJob{{Name: "qcom", Cron: "0 0 22 * * *"}}
	assert.ErrorContains(t, cfg.ValidateTelegram(), "watch[0]")
}
