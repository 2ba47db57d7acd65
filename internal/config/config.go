package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration read from the environment
type Config struct {
	ContentSourceURL       string        `env:"CONTENT_SOURCE_URL"`
	ContentFetchTimeout    time.Duration `env:"CONTENT_FETCH_TIMEOUT" envDefault:"20s"`
	ContentRefreshInterval time.Duration `env:"CONTENT_REFRESH_INTERVAL" envDefault:"1h"`
	ReachabilityURL        string        `env:"REACHABILITY_URL"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBDSN    string `env:"DB_DSN"`
	DataDir  string `env:"DATA_DIR"`

	AssetCacheDir        string `env:"ASSET_CACHE_DIR"`
	AssetCacheMaxEntries int    `env:"ASSET_CACHE_MAX_ENTRIES" envDefault:"500"`

	SessionSize int           `env:"SESSION_SIZE" envDefault:"20"`
	DueAfter    time.Duration `env:"DUE_AFTER" envDefault:"12h"`
	UserID      string        `env:"LINGUALISTEN_USER" envDefault:"local"`

	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID    int64  `env:"TELEGRAM_CHAT_ID"`
	ReminderHourStart int    `env:"REMINDER_HOUR_START" envDefault:"8"`
	ReminderHourEnd   int    `env:"REMINDER_HOUR_END" envDefault:"20"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Bounds of the content fetch timeout
const (
	MinFetchTimeout = time.Second
	MaxFetchTimeout = time.Minute
)

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values and fills in derived defaults
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid database driver %q", c.DBDriver)
	}

	if c.ContentFetchTimeout < MinFetchTimeout || c.ContentFetchTimeout > MaxFetchTimeout {
		return fmt.Errorf("content fetch timeout %s must be between %s and %s",
			c.ContentFetchTimeout, MinFetchTimeout, MaxFetchTimeout)
	}
	if c.ContentRefreshInterval < time.Minute {
		return fmt.Errorf("content refresh interval %s is shorter than a minute", c.ContentRefreshInterval)
	}
	if c.SessionSize < 1 || c.SessionSize > 20 {
		return fmt.Errorf("session size %d must be between 1 and 20", c.SessionSize)
	}
	if c.DueAfter <= 0 {
		return fmt.Errorf("due-after interval must be positive")
	}
	if c.AssetCacheMaxEntries < 1 {
		return fmt.Errorf("asset cache must hold at least one entry")
	}
	for _, h := range []int{c.ReminderHourStart, c.ReminderHourEnd} {
		if h < 0 || h > 23 {
			return fmt.Errorf("reminder hour %d out of range", h)
		}
	}
	if c.ReminderHourStart > c.ReminderHourEnd {
		return fmt.Errorf("reminder window %d-%d is empty", c.ReminderHourStart, c.ReminderHourEnd)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id cannot be empty")
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "lingualisten")
	}
	if c.DBDSN == "" {
		if c.DBDriver == "postgres" {
			return errors.New("DB_DSN is required for postgres")
		}
		c.DBDSN = filepath.Join(c.DataDir, "lingualisten.db")
	}
	if c.AssetCacheDir == "" {
		c.AssetCacheDir = filepath.Join(c.DataDir, "audio")
	}
	if c.ReachabilityURL == "" && c.RemoteSource() {
		c.ReachabilityURL = c.ContentSourceURL
	}

	return nil
}

// RemoteSource reports whether content comes over the network
func (c *Config) RemoteSource() bool {
	u, err := url.Parse(c.ContentSourceURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// TelegramEnabled reports whether reminders go through a Telegram bot
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// NewLogger builds the application logger
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	formatter := log.TextFormatter
	if c.LogFormat == "json" {
		formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "lingualisten",
	})
}
