package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/taskboard-go/internal/clock"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultStoreBackend     = storage.BackendFile
	DefaultStorePath        = "~/.taskboard/store"
	DefaultPort             = "stdio"
	DefaultBaud             = 115200
	DefaultLogDir           = "~/.taskboard/logs"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultPollIntervalMS   = 20
	DefaultDebounceMS       = 50
	DefaultSleepAt          = "17:10"
	DefaultEODAt            = "17:00"
	DefaultMirrorFile       = "~/.taskboard/tasks.json"
	DefaultNotesMaxLen      = 180
	DefaultReplyTimeoutMS   = 1500
	DefaultSyncIntervalS    = 3600
	DefaultListIntervalS    = 60
	DefaultUTCOffsetMinutes = 0
)

// Config holds the full configuration for taskboard.
type Config struct {
	// Storage
	StoreBackend string `toml:"store_backend"`
	StorePath    string `toml:"store_path"`

	// Serial link
	Port string `toml:"port"`
	Baud int    `toml:"baud"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Device loop
	PollIntervalMS   int    `toml:"poll_interval_ms"`
	DebounceMS       int    `toml:"debounce_ms"`
	UTCOffsetMinutes int    `toml:"utc_offset_minutes"`
	SleepAt          string `toml:"sleep_at"`
	EODAt            string `toml:"eod_at"`

	// Companion
	MirrorFile     string `toml:"mirror_file"`
	NotesMaxLen    int    `toml:"notes_max_len"`
	ReplyTimeoutMS int    `toml:"reply_timeout_ms"`
	SyncIntervalS  int    `toml:"sync_interval_s"`
	ListIntervalS  int    `toml:"list_interval_s"`
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.StoreBackend = DefaultStoreBackend
	cfg.StorePath = DefaultStorePath
	cfg.Port = DefaultPort
	cfg.Baud = DefaultBaud
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
	cfg.PollIntervalMS = DefaultPollIntervalMS
	cfg.DebounceMS = DefaultDebounceMS
	cfg.UTCOffsetMinutes = DefaultUTCOffsetMinutes
	cfg.SleepAt = DefaultSleepAt
	cfg.EODAt = DefaultEODAt
	cfg.MirrorFile = DefaultMirrorFile
	cfg.NotesMaxLen = DefaultNotesMaxLen
	cfg.ReplyTimeoutMS = DefaultReplyTimeoutMS
	cfg.SyncIntervalS = DefaultSyncIntervalS
	cfg.ListIntervalS = DefaultListIntervalS
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if !validBackend(c.StoreBackend) {
		errs = append(errs, fmt.Errorf("store_backend %q: want one of %s", c.StoreBackend, strings.Join(storage.Backends(), ", ")))
	}
	if c.StoreBackend != storage.BackendMemory && strings.TrimSpace(c.StorePath) == "" {
		errs = append(errs, errors.New("store_path is empty"))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("baud %d: must be positive", c.Baud))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q: want text, json or logfmt", c.LogFormat))
	}
	if c.PollIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval_ms %d: must be positive", c.PollIntervalMS))
	}
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms %d: must not be negative", c.DebounceMS))
	}
	if c.UTCOffsetMinutes < -14*60 || c.UTCOffsetMinutes > 14*60 {
		errs = append(errs, fmt.Errorf("utc_offset_minutes %d: out of range", c.UTCOffsetMinutes))
	}
	if _, err := clock.ParseHHMM(c.SleepAt); err != nil {
		errs = append(errs, fmt.Errorf("sleep_at: %w", err))
	}
	if _, err := clock.ParseHHMM(c.EODAt); err != nil {
		errs = append(errs, fmt.Errorf("eod_at: %w", err))
	}
	if c.NotesMaxLen < 0 {
		errs = append(errs, fmt.Errorf("notes_max_len %d: must not be negative", c.NotesMaxLen))
	}
	if c.ReplyTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("reply_timeout_ms %d: must not be negative", c.ReplyTimeoutMS))
	}
	if c.SyncIntervalS <= 0 {
		errs = append(errs, fmt.Errorf("sync_interval_s %d: must be positive", c.SyncIntervalS))
	}
	if c.ListIntervalS <= 0 {
		errs = append(errs, fmt.Errorf("list_interval_s %d: must be positive", c.ListIntervalS))
	}
	return errors.Join(errs...)
}

func validBackend(name string) bool {
	for _, b := range storage.Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// PollInterval returns the device loop period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Debounce returns the touch debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ReplyTimeout returns how long the companion waits for a dump.
func (c *Config) ReplyTimeout() time.Duration {
	return time.Duration(c.ReplyTimeoutMS) * time.Millisecond
}

// SyncInterval returns how often watch resends the time.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalS) * time.Second
}

// ListInterval returns how often watch refreshes the list.
func (c *Config) ListInterval() time.Duration {
	return time.Duration(c.ListIntervalS) * time.Second
}

// SleepAtMinutes returns sleep_at as minutes of day. Invalid values fall
// back to the default.
func (c *Config) SleepAtMinutes() int {
	return minutesOr(c.SleepAt, DefaultSleepAt)
}

// EODAtMinutes returns eod_at as minutes of day. Invalid values fall back
// to the default.
func (c *Config) EODAtMinutes() int {
	return minutesOr(c.EODAt, DefaultEODAt)
}

func minutesOr(v, fallback string) int {
	if m, err := clock.ParseHHMM(v); err == nil {
		return m
	}
	m, _ := clock.ParseHHMM(fallback)
	return m
}

// ConsoleOptions returns the console logger settings.
func (c *Config) ConsoleOptions() logging.ConsoleOptions {
	opts := logging.DefaultConsoleOptions()
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat
	opts.Timestamps = c.LogTimestamps
	opts.Caller = c.LogCaller
	return opts
}
