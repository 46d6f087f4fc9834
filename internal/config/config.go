package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"DrawdownSentinel/internal/model"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is set.
const DefaultPath = "configs/config.yaml"

// TelegramConfig holds bot credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

// AnalysisConfig controls the look-back period and trend window.
type AnalysisConfig struct {
	Period   string `yaml:"period" env:"ANALYSIS_PERIOD"`
	MAWindow int    `yaml:"ma_window" env:"MA_WINDOW"`
}

// ScheduleConfig controls when the daily report is sent.
type ScheduleConfig struct {
	DailyCron string `yaml:"daily_cron" env:"DAILY_CRON"`
	AlertTime string `yaml:"alert_time" env:"ALERT_TIME"` // HH:MM, used when daily_cron is empty
	Timezone  string `yaml:"timezone" env:"TIMEZONE"`
}

// WatchlistConfig holds the watch-list file and its seed values.
type WatchlistConfig struct {
	File             string   `yaml:"file" env:"WATCHLIST_FILE"`
	DefaultSymbols   []string `yaml:"default_symbols" env:"DEFAULT_SYMBOLS" envSeparator:","`
	DefaultMASymbols []string `yaml:"default_ma_symbols" env:"DEFAULT_MA_SYMBOLS" envSeparator:","`
}

// DataSourceConfig selects the price-history provider. An empty BaseURL
// means Yahoo Finance.
type DataSourceConfig struct {
	BaseURL  string `yaml:"base_url" env:"VSTRADER_BASE_URL"`
	APIKey   string `yaml:"api_key" env:"VSTRADER_API_KEY"`
	YahooRPM int    `yaml:"yahoo_rpm" env:"YAHOO_RPM"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

// Config holds all application configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Watchlist  WatchlistConfig  `yaml:"watchlist"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Proxy      string           `yaml:"proxy" env:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then an optional .env file, then
// applies environment variable overrides and defaults.
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

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.Period == "" {
		c.Analysis.Period = string(model.DefaultPeriod)
	}
	if c.Analysis.MAWindow == 0 {
		c.Analysis.MAWindow = 200
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 9 * * *"
		if cr, err := AlertTimeCron(c.Schedule.AlertTime); err == nil {
			c.Schedule.DailyCron = cr
		}
	}
	if c.Watchlist.File == "" {
		c.Watchlist.File = "data/watchlist.json"
	}
	if len(c.Watchlist.DefaultSymbols) == 0 {
		c.Watchlist.DefaultSymbols = []string{"TSLA", "SCHD", "SCHG"}
	}
	if c.Watchlist.DefaultMASymbols == nil {
		c.Watchlist.DefaultMASymbols = []string{"TSLA"}
	}
	if c.DataSource.YahooRPM == 0 {
		c.DataSource.YahooRPM = 60
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/drawdown_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// AlertTimeCron converts an HH:MM time of day into a seconds-field cron spec.
func AlertTimeCron(hhmm string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return "", fmt.Errorf("alert_time %q: expected HH:MM", hhmm)
	}
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}

// Location resolves the configured timezone, defaulting to local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}

// ReportPeriod returns the validated default analysis period.
func (c *Config) ReportPeriod() (model.Period, error) {
	return model.ParsePeriod(c.Analysis.Period)
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if _, err := c.ReportPeriod(); err != nil {
		return fmt.Errorf("analysis.period: %w", err)
	}
	if c.Analysis.MAWindow <= 0 {
		return fmt.Errorf("analysis.ma_window must be positive")
	}
	if _, err := cronParser.Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.DataSource.YahooRPM < 0 {
		return fmt.Errorf("data_source.yahoo_rpm must not be negative")
	}
	return nil
}
