package config

import (
	"fmt"
	"strconv"
	"strings"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
)

// field binds one config key to its env var, flag and struct member.
type field struct {
	key     string
	env     string
	flag    string
	usage   string
	kind    fieldKind
	str     func(c *Config) *string
	num     func(c *Config) *int
	boolean func(c *Config) *bool
}

// fields is the single table every config layer is driven from.
var fields = []field{
	{key: "store_backend", env: "TASKBOARD_STORE_BACKEND", flag: "store-backend", usage: "Store backend (file, sqlite, memory)", kind: kindString, str: func(c *Config) *string { return &c.StoreBackend }},
	{key: "store_path", env: "TASKBOARD_STORE_PATH", flag: "store-path", usage: "Store directory", kind: kindString, str: func(c *Config) *string { return &c.StorePath }},
	{key: "port", env: "TASKBOARD_PORT", flag: "port", usage: "Serial port (stdio, pty or a device path)", kind: kindString, str: func(c *Config) *string { return &c.Port }},
	{key: "baud", env: "TASKBOARD_BAUD", flag: "baud", usage: "Serial baud rate", kind: kindInt, num: func(c *Config) *int { return &c.Baud }},
	{key: "log_dir", env: "TASKBOARD_LOG_DIR", flag: "log-dir", usage: "Traffic log directory", kind: kindString, str: func(c *Config) *string { return &c.LogDir }},
	{key: "log_level", env: "TASKBOARD_LOG_LEVEL", flag: "log-level", usage: "Log level (debug, info, warn, error)", kind: kindString, str: func(c *Config) *string { return &c.LogLevel }},
	{key: "log_format", env: "TASKBOARD_LOG_FORMAT", flag: "log-format", usage: "Log format (text, json, logfmt)", kind: kindString, str: func(c *Config) *string { return &c.LogFormat }},
	{key: "log_timestamps", env: "TASKBOARD_LOG_TIMESTAMPS", flag: "log-timestamps", usage: "Show timestamps in logs", kind: kindBool, boolean: func(c *Config) *bool { return &c.LogTimestamps }},
	{key: "log_caller", env: "TASKBOARD_LOG_CALLER", flag: "log-caller", usage: "Show caller location in logs", kind: kindBool, boolean: func(c *Config) *bool { return &c.LogCaller }},
	{key: "poll_interval_ms", env: "TASKBOARD_POLL_INTERVAL_MS", flag: "poll-interval-ms", usage: "Device loop period in milliseconds", kind: kindInt, num: func(c *Config) *int { return &c.PollIntervalMS }},
	{key: "debounce_ms", env: "TASKBOARD_DEBOUNCE_MS", flag: "debounce-ms", usage: "Touch debounce delay in milliseconds", kind: kindInt, num: func(c *Config) *int { return &c.DebounceMS }},
	{key: "utc_offset_minutes", env: "TASKBOARD_UTC_OFFSET_MINUTES", flag: "utc-offset-minutes", usage: "Offset added to TIME epochs", kind: kindInt, num: func(c *Config) *int { return &c.UTCOffsetMinutes }},
	{key: "sleep_at", env: "TASKBOARD_SLEEP_AT", flag: "sleep-at", usage: "Auto sleep time of day (HH:MM)", kind: kindString, str: func(c *Config) *string { return &c.SleepAt }},
	{key: "eod_at", env: "TASKBOARD_EOD_AT", flag: "eod-at", usage: "End of day countdown target (HH:MM)", kind: kindString, str: func(c *Config) *string { return &c.EODAt }},
	{key: "mirror_file", env: "TASKBOARD_MIRROR_FILE", flag: "mirror-file", usage: "Companion task mirror file", kind: kindString, str: func(c *Config) *string { return &c.MirrorFile }},
	{key: "notes_max_len", env: "TASKBOARD_NOTES_MAX_LEN", flag: "notes-max-len", usage: "Notes length cap for companion commands", kind: kindInt, num: func(c *Config) *int { return &c.NotesMaxLen }},
	{key: "reply_timeout_ms", env: "TASKBOARD_REPLY_TIMEOUT_MS", flag: "reply-timeout-ms", usage: "Companion wait for a task dump in milliseconds", kind: kindInt, num: func(c *Config) *int { return &c.ReplyTimeoutMS }},
	{key: "sync_interval_s", env: "TASKBOARD_SYNC_INTERVAL_S", flag: "sync-interval-s", usage: "Watch time sync period in seconds", kind: kindInt, num: func(c *Config) *int { return &c.SyncIntervalS }},
	{key: "list_interval_s", env: "TASKBOARD_LIST_INTERVAL_S", flag: "list-interval-s", usage: "Watch list refresh period in seconds", kind: kindInt, num: func(c *Config) *int { return &c.ListIntervalS }},
}

// Keys returns the config keys in display order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// copyTo copies the field's value from src to dst.
func (f field) copyTo(dst, src *Config) {
	switch f.kind {
	case kindInt:
		*f.num(dst) = *f.num(src)
	case kindBool:
		*f.boolean(dst) = *f.boolean(src)
	default:
		*f.str(dst) = *f.str(src)
	}
}

// parse sets the field from text.
func (f field) parse(c *Config, s string) error {
	switch f.kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", f.key, s)
		}
		*f.num(c) = n
	case kindBool:
		*f.boolean(c) = boolFromString(s)
	default:
		*f.str(c) = s
	}
	return nil
}

// format renders the field's current value.
func (f field) format(c *Config) string {
	switch f.kind {
	case kindInt:
		return strconv.Itoa(*f.num(c))
	case kindBool:
		return strconv.FormatBool(*f.boolean(c))
	default:
		return *f.str(c)
	}
}

// Value returns the rendered value of key, or false for unknown keys.
func (c *Config) Value(key string) (string, bool) {
	f, ok := lookupField(key)
	if !ok {
		return "", false
	}
	return f.format(c), true
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
