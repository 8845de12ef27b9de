package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskboard configuration file
# Values can be overridden by TASKBOARD_* environment variables or CLI flags

# Task blob store: file, sqlite or memory
store_backend = "file"

# Store directory (supports ~ expansion and %VAR% on Windows)
store_path = "~/.taskboard/store"

# Serial link: "stdio", "pty" (simulator only) or a device path such as /dev/ttyUSB0
port = "stdio"
baud = 115200

# Traffic logs and console logging
log_dir = "~/.taskboard/logs"
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false

# Device loop
poll_interval_ms = 20
debounce_ms = 50

# Minutes added to TIME epochs before taking the time of day
utc_offset_minutes = 0

# Screen turns off once per clock sync at this time
sleep_at = "17:10"

# Top bar counts down to this time
eod_at = "17:00"

# Companion
mirror_file = "~/.taskboard/tasks.json"
notes_max_len = 180
reply_timeout_ms = 1500

# pc watch resends the time and refreshes the list on these periods
sync_interval_s = 3600
list_interval_s = 60
`
}
