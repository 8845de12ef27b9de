package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewSessionLog(t *testing.T) {
	t.Run("creates file under project slug", func(t *testing.T) {
		base := t.TempDir()
		work := t.TempDir()

		s, err := NewSessionLog(base, work)
		if err != nil {
			t.Fatalf("NewSessionLog: %v", err)
		}
		defer s.Close()

		want, _ := FindLogDir(base, work)
		if s.Dir != want {
			t.Errorf("Dir: got %q, want %q", s.Dir, want)
		}
		if filepath.Base(s.LogPath) != s.ID+".jsonl" {
			t.Errorf("LogPath %q does not match ID %q", s.LogPath, s.ID)
		}
		if _, err := os.Stat(s.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir", func(t *testing.T) {
		if _, err := NewSessionLog("", t.TempDir()); err == nil || !strings.Contains(err.Error(), "empty") {
			t.Fatalf("expected empty dir error, got %v", err)
		}
	})

	t.Run("relative base resolves against work dir", func(t *testing.T) {
		work := t.TempDir()
		s, err := NewSessionLog("logs", work)
		if err != nil {
			t.Fatalf("NewSessionLog: %v", err)
		}
		defer s.Close()
		if !strings.HasPrefix(s.Dir, filepath.Join(work, "logs")) {
			t.Errorf("Dir %q not under %q", s.Dir, work)
		}
	})

	t.Run("close is nil safe", func(t *testing.T) {
		var s *SessionLog
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
}

func TestSessionIDsDiffer(t *testing.T) {
	now := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)
	a, b := sessionID(now), sessionID(now)
	if a == b {
		t.Errorf("ids collided: %s", a)
	}
	if !strings.HasPrefix(a, "20240605-150000-") {
		t.Errorf("id prefix: %s", a)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"":            "board",
		"my board":    "my_board",
		"a//b":        "a_b",
		"__x__":       "x",
		"ok.name-1_2": "ok.name-1_2",
		"***":         "board",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestProjectSlugStable(t *testing.T) {
	a := projectSlug("/tmp/board")
	if a != projectSlug("/tmp/board") {
		t.Error("slug not stable")
	}
	if a == projectSlug("/var/board") {
		t.Error("different roots share a slug")
	}
	if !strings.HasPrefix(a, "board-") || len(a) != len("board-")+8 {
		t.Errorf("slug shape: %q", a)
	}
}

func writeLog(t *testing.T, dir, name, body string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeLog(t, dir, "a.jsonl", "1\n", base)
	newest := writeLog(t, dir, "b.jsonl", "1\n2\n", base.Add(time.Minute))
	writeLog(t, dir, "notes.txt", "x", base.Add(2*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "sub.jsonl"), 0755); err != nil {
		t.Fatal(err)
	}

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "b" || sessions[1].ID != "a" {
		t.Fatalf("sessions: %+v", sessions)
	}
	if sessions[0].Size != 4 {
		t.Errorf("Size: %d", sessions[0].Size)
	}

	latest, err := FindLatestLog(dir)
	if err != nil || latest != newest {
		t.Errorf("FindLatestLog: %q, %v", latest, err)
	}

	missing, err := FindLatestLog(filepath.Join(dir, "nope"))
	if err != nil || missing != "" {
		t.Errorf("missing dir: %q, %v", missing, err)
	}
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	var body strings.Builder
	for i := 0; i < 2000; i++ {
		body.WriteString("line ")
		body.WriteString(strings.Repeat("x", i%7))
		body.WriteString("\n")
	}
	body.WriteString("last line\n")
	path := writeLog(t, dir, "s.jsonl", body.String(), time.Now())

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"all", 0, 2001},
		{"one", 1, 1},
		{"three", 3, 3},
		{"more than file", 5000, 2001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			got := strings.Count(buf.String(), "\n")
			if got != tt.want {
				t.Errorf("lines: got %d, want %d", got, tt.want)
			}
			if !strings.HasSuffix(buf.String(), "last line\n") {
				t.Errorf("missing final line")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(dir, "nope"), 1, false); err == nil {
			t.Error("expected error")
		}
	})
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func TestTailLogFollow(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "s.jsonl", "first\n", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() { done <- TailLog(ctx, out, path, 10, true) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "second") {
		if time.Now().After(deadline) {
			t.Fatalf("appended line not followed, got %q", out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("TailLog: %v", err)
	}
	if !strings.HasPrefix(out.String(), "first\n") {
		t.Errorf("output: %q", out.String())
	}
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)
	ts := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)
	if err := w.Write(Event{Time: ts, Dir: DirIn, Line: `{"cmd":"LIST_TASKS"}`}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(Event{Dir: DirNote, Note: "ignored"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: %q", buf.String())
	}
	want := `{"ts":"2024-06-05T15:00:00Z","dir":"in","line":"{\"cmd\":\"LIST_TASKS\"}"}`
	if lines[0] != want {
		t.Errorf("line 0:\n got %s\nwant %s", lines[0], want)
	}
	if !strings.Contains(lines[1], `"note":"ignored"`) || strings.Contains(lines[1], `"0001-01-01`) {
		t.Errorf("line 1: %s", lines[1])
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write(Event) error { return f.err }

func TestMultiWriter(t *testing.T) {
	var buf bytes.Buffer
	errA := errors.New("a failed")
	m := NewMultiWriter(NewJSONLWriter(&buf), nil, failingWriter{errA}, NullWriter{})
	err := m.Write(Event{Dir: DirOut, Line: "x"})
	if !errors.Is(err, errA) {
		t.Errorf("error: %v", err)
	}
	if !strings.Contains(buf.String(), `"line":"x"`) {
		t.Errorf("healthy writer skipped: %q", buf.String())
	}
	if err := NewMultiWriter().Write(Event{}); err != nil {
		t.Errorf("empty multi writer: %v", err)
	}
}

func TestConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, ConsoleOptions{Level: "debug", Format: "logfmt"})
	if err := NewConsoleWriter(logger).Write(Event{Dir: DirOut, Line: "hello", Note: "dump"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"hello", "dir=out", "note=dump"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	quiet := NewConsole(&buf, DefaultConsoleOptions())
	NewConsoleWriter(quiet).Write(Event{Dir: DirIn, Line: "hidden"})
	if buf.Len() != 0 {
		t.Errorf("debug traffic shown at info level: %q", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		" error ": log.ErrorLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range levels {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
	if ParseFormatter("json") != log.JSONFormatter || ParseFormatter("logfmt") != log.LogfmtFormatter || ParseFormatter("x") != log.TextFormatter {
		t.Error("ParseFormatter")
	}
	if !ValidLevel("warn") || ValidLevel("loud") || !ValidFormat("JSON") || ValidFormat("xml") {
		t.Error("Valid helpers")
	}
}
