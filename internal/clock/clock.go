// Package clock tracks time of day from a PC supplied anchor.
//
// The device has no real-time clock. Time arrives as SET_TIME or TIME
// messages; between them the current time is the anchor plus the ticks
// elapsed since it was set, wrapped into a single day.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// MinutesPerDay is the wrap point for minutes-of-day values.
const MinutesPerDay = 24 * 60

// Source yields a monotonic millisecond tick counter.
type Source interface {
	Millis() int64
}

// SystemSource reads the process monotonic clock.
type SystemSource struct {
	start time.Time
}

// NewSystemSource returns a Source anchored at the current instant.
func NewSystemSource() *SystemSource {
	return &SystemSource{start: time.Now()}
}

// Millis returns milliseconds since the source was created.
func (s *SystemSource) Millis() int64 {
	return time.Since(s.start).Milliseconds()
}

// ManualSource is a Source advanced explicitly. It is safe for use from
// multiple goroutines.
type ManualSource struct {
	mu sync.Mutex
	ms int64
}

// Millis returns the current tick value.
func (m *ManualSource) Millis() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ms
}

// Advance moves the tick counter forward by d.
func (m *ManualSource) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ms += d.Milliseconds()
}

// Clock is a tick-extrapolated time of day.
type Clock struct {
	src          Source
	synced       bool
	anchor       int
	anchorMillis int64
	sleepFired   bool
}

// New returns an unsynced clock reading ticks from src.
func New(src Source) *Clock {
	if src == nil {
		src = NewSystemSource()
	}
	return &Clock{src: src}
}

// SetAnchor records minutes as the current time of day. It also re-arms
// the sleep trigger.
func (c *Clock) SetAnchor(minutes int) {
	c.anchor = Wrap(minutes)
	c.anchorMillis = c.src.Millis()
	c.synced = true
	c.sleepFired = false
}

// Synced reports whether an anchor has been received.
func (c *Clock) Synced() bool {
	return c.synced
}

// Now returns the current minutes-of-day, or false before the first anchor.
func (c *Clock) Now() (int, bool) {
	if !c.synced {
		return 0, false
	}
	elapsed := (c.src.Millis() - c.anchorMillis) / int64(time.Minute/time.Millisecond)
	return Wrap(c.anchor + int(elapsed%MinutesPerDay)), true
}

// CountdownTo returns target minus now in minutes. It is negative once
// target has passed. It reports false when unsynced.
func (c *Clock) CountdownTo(target int) (int, bool) {
	now, ok := c.Now()
	if !ok {
		return 0, false
	}
	return target - now, true
}

// SleepDue reports true exactly once per anchor, on the first call where
// the current time is at or past threshold.
func (c *Clock) SleepDue(threshold int) bool {
	if c.sleepFired {
		return false
	}
	now, ok := c.Now()
	if !ok || now < threshold {
		return false
	}
	c.sleepFired = true
	return true
}

// Wrap folds minutes into [0, MinutesPerDay).
func Wrap(minutes int) int {
	m := minutes % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// FromHourMinute converts a wall time to minutes-of-day. Out of range
// inputs are rejected.
func FromHourMinute(hour, minute int) (int, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// MinutesFromEpoch converts Unix seconds plus a fixed UTC offset to
// minutes-of-day.
func MinutesFromEpoch(epoch int64, offsetMinutes int) int {
	secs := epoch + int64(offsetMinutes)*60
	day := int64(MinutesPerDay * 60)
	secs %= day
	if secs < 0 {
		secs += day
	}
	return int(secs / 60)
}

// ParseHHMM parses "HH:MM" (24h) into minutes-of-day.
func ParseHHMM(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: expected HH:MM", s)
	}
	minutes, ok := FromHourMinute(h, m)
	if !ok {
		return 0, fmt.Errorf("parse time %q: out of range", s)
	}
	return minutes, nil
}

// FormatHHMM renders minutes-of-day as 24h "HH:MM".
func FormatHHMM(minutes int) string {
	minutes = Wrap(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Format12h renders minutes-of-day as "h:mm AM".
func Format12h(minutes int) string {
	minutes = Wrap(minutes)
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// FormatCountdown renders a countdown as "Nh Mm to <label>", or reached
// once it is no longer positive.
func FormatCountdown(minutes int, label, reached string) string {
	if minutes <= 0 {
		return reached
	}
	return fmt.Sprintf("%dh %dm to %s", minutes/60, minutes%60, label)
}
