package clock

import (
	"testing"
	"time"
)

func TestUnsyncedUntilAnchor(t *testing.T) {
	c := New(&ManualSource{})
	if _, ok := c.Now(); ok {
		t.Fatal("Now should report unsynced before SetAnchor")
	}
	if _, ok := c.CountdownTo(17 * 60); ok {
		t.Fatal("CountdownTo should report unsynced before SetAnchor")
	}
	if c.SleepDue(0) {
		t.Fatal("SleepDue must not fire while unsynced")
	}
}

func TestSetTimeAndSleepScenario(t *testing.T) {
	src := &ManualSource{}
	c := New(src)
	threshold := 17*60 + 10

	c.SetAnchor(16*60 + 55)
	fired := 0
	for i := 0; i < 20; i++ {
		src.Advance(time.Minute)
		if c.SleepDue(threshold) {
			fired++
		}
	}

	now, ok := c.Now()
	if !ok {
		t.Fatal("expected synced clock")
	}
	if now != 17*60+15 {
		t.Errorf("Now: got %s, want 17:15", FormatHHMM(now))
	}
	if fired != 1 {
		t.Errorf("sleep fired %d times, want 1", fired)
	}

	c.SetAnchor(17*60 + 30)
	if !c.SleepDue(threshold) {
		t.Error("re-anchoring should re-arm the sleep trigger")
	}
}

func TestNowWrapsAtMidnight(t *testing.T) {
	src := &ManualSource{}
	c := New(src)
	c.SetAnchor(23*60 + 50)
	src.Advance(25 * time.Minute)
	if now, _ := c.Now(); now != 15 {
		t.Errorf("Now: got %d, want 15", now)
	}
	src.Advance(48 * time.Hour)
	if now, _ := c.Now(); now != 15 {
		t.Errorf("Now after two days: got %d, want 15", now)
	}
}

func TestCountdown(t *testing.T) {
	src := &ManualSource{}
	c := New(src)
	c.SetAnchor(15*60 + 20)
	got, _ := c.CountdownTo(17 * 60)
	if got != 100 {
		t.Errorf("CountdownTo: got %d, want 100", got)
	}
	if s := FormatCountdown(got, "EOD", "EOD reached"); s != "1h 40m to EOD" {
		t.Errorf("FormatCountdown: got %q", s)
	}
	src.Advance(2 * time.Hour)
	got, _ = c.CountdownTo(17 * 60)
	if got >= 0 {
		t.Errorf("CountdownTo past target: got %d, want negative", got)
	}
	if s := FormatCountdown(got, "EOD", "EOD reached"); s != "EOD reached" {
		t.Errorf("FormatCountdown: got %q", s)
	}
}

func TestMinutesFromEpoch(t *testing.T) {
	// 2024-01-01T13:45:30Z
	const epoch = 1704116730
	tests := []struct {
		offset int
		want   int
	}{
		{0, 13*60 + 45},
		{120, 15*60 + 45},
		{-14 * 60, 23*60 + 45},
	}
	for _, tt := range tests {
		if got := MinutesFromEpoch(epoch, tt.offset); got != tt.want {
			t.Errorf("MinutesFromEpoch(offset %d): got %s, want %s", tt.offset, FormatHHMM(got), FormatHHMM(tt.want))
		}
	}
}

func TestFromHourMinute(t *testing.T) {
	if m, ok := FromHourMinute(16, 55); !ok || m != 1015 {
		t.Errorf("FromHourMinute(16,55) = (%d, %v)", m, ok)
	}
	for _, hm := range [][2]int{{24, 0}, {-1, 0}, {0, 60}} {
		if _, ok := FromHourMinute(hm[0], hm[1]); ok {
			t.Errorf("FromHourMinute(%d,%d) should be rejected", hm[0], hm[1])
		}
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		minutes int
		h12     string
		hhmm    string
	}{
		{0, "12:00 AM", "00:00"},
		{9*60 + 5, "9:05 AM", "09:05"},
		{12 * 60, "12:00 PM", "12:00"},
		{17*60 + 10, "5:10 PM", "17:10"},
		{-1, "11:59 PM", "23:59"},
	}
	for _, tt := range tests {
		if got := Format12h(tt.minutes); got != tt.h12 {
			t.Errorf("Format12h(%d): got %q, want %q", tt.minutes, got, tt.h12)
		}
		if got := FormatHHMM(tt.minutes); got != tt.hhmm {
			t.Errorf("FormatHHMM(%d): got %q, want %q", tt.minutes, got, tt.hhmm)
		}
	}
}

func TestParseHHMM(t *testing.T) {
	if m, err := ParseHHMM("17:10"); err != nil || m != 1030 {
		t.Errorf("ParseHHMM(17:10) = (%d, %v)", m, err)
	}
	for _, bad := range []string{"", "5pm", "25:00", "12:75"} {
		if _, err := ParseHHMM(bad); err == nil {
			t.Errorf("ParseHHMM(%q) expected error", bad)
		}
	}
}
