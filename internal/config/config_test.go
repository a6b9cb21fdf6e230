package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0 */5 * * * *", cfg.Alerts.Cron)
	assert.Equal(t, "data/crypto_sentinel.db", cfg.Alerts.SQLitePath)
	assert.Equal(t, 100, cfg.Analytics.HistoryLimit)
	assert.Equal(t, 7, cfg.Analytics.SMAWindow)
	assert.Equal(t, 7, cfg.Analytics.ForecastDays)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
market_data:
  base_url: "https://min-api.cryptocompare.com"
  api_key: "file-key"
alerts:
  cron: "0 * * * * *"
  recipients:
    alice: "12345"
analytics:
  history_limit: 50
  sma_window: 14
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.BotToken)
	assert.Equal(t, "file-key", cfg.MarketData.APIKey)
	assert.Equal(t, "0 * * * * *", cfg.Alerts.Cron)
	assert.Equal(t, "12345", cfg.Alerts.Recipients["alice"])
	assert.Equal(t, 50, cfg.Analytics.HistoryLimit)
	assert.Equal(t, 14, cfg.Analytics.SMAWindow)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.Analytics.ForecastDays, "unset fields still get defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
alerts:
  cron: "0 * * * * *"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("ALERT_CRON", "*/30 * * * * *")
	t.Setenv("SQLITE_PATH", "/tmp/alerts.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "*/30 * * * * *", cfg.Alerts.Cron)
	assert.Equal(t, "/tmp/alerts.db", cfg.Alerts.SQLitePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Error(t, cfg.Validate(), "bot token is required")

	cfg.Telegram.BotToken = "token"
	assert.NoError(t, cfg.Validate())

	cfg.Analytics.HistoryLimit = 1
	assert.Error(t, cfg.Validate())
	cfg.Analytics.HistoryLimit = 2

	cfg.Analytics.SMAWindow = 0
	assert.Error(t, cfg.Validate())
}
