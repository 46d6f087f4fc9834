package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1y", cfg.Analysis.Period)
	assert.Equal(t, 200, cfg.Analysis.MAWindow)
	assert.Equal(t, "0 0 9 * * *", cfg.Schedule.DailyCron)
	assert.Equal(t, []string{"TSLA", "SCHD", "SCHG"}, cfg.Watchlist.DefaultSymbols)
	assert.Equal(t, []string{"TSLA"}, cfg.Watchlist.DefaultMASymbols)
	assert.Equal(t, "data/watchlist.json", cfg.Watchlist.File)
	assert.Equal(t, "data/drawdown_sentinel.db", cfg.Database.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
telegram:
  bot_token: yaml-token
  chat_id: "123"
analysis:
  period: 6mo
watchlist:
  default_symbols: [AAPL, MSFT]
schedule:
  timezone: Asia/Seoul
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("DEFAULT_MA_SYMBOLS", "AAPL,MSFT")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "123", cfg.Telegram.ChatID)
	assert.Equal(t, "6mo", cfg.Analysis.Period)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watchlist.DefaultSymbols)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watchlist.DefaultMASymbols)
	require.NoError(t, cfg.Validate())

	p, err := cfg.ReportPeriod()
	require.NoError(t, err)
	assert.Equal(t, model.Period6mo, p)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TELEGRAM_CHAT_ID=999\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TELEGRAM_CHAT_ID") })

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "999", cfg.Telegram.ChatID)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.Error(t, err)
}

func TestAlertTimeCron(t *testing.T) {
	cr, err := AlertTimeCron("08:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 8 * * *", cr)

	_, err = AlertTimeCron("25:00")
	assert.Error(t, err)
}

func TestAlertTimeUsedWhenCronEmpty(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALERT_TIME", "07:15")

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "0 15 7 * * *", cfg.Schedule.DailyCron)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.BotToken = "t"
		c.Telegram.ChatID = "1"
		c.applyDefaults()
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no token", func(c *Config) { c.Telegram.BotToken = "" }, "bot_token"},
		{"no chat", func(c *Config) { c.Telegram.ChatID = "" }, "chat_id"},
		{"bad period", func(c *Config) { c.Analysis.Period = "7w" }, "invalid period"},
		{"bad window", func(c *Config) { c.Analysis.MAWindow = -1 }, "ma_window"},
		{"bad cron", func(c *Config) { c.Schedule.DailyCron = "every day" }, "daily_cron"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Base" }, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
