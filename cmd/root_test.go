// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/taskboard-go/internal/config"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// isolate points every config layer at a fresh home and working directory.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range config.Keys() {
		t.Setenv("TASKBOARD_"+strings.ToUpper(key), "")
	}
	t.Chdir(work)
	return home, work
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRun(t *testing.T) {
	isolate(t)

	t.Run("help", func(t *testing.T) {
		if err := Run(context.Background(), []string{"--help"}); err != nil {
			t.Errorf("expected no error with --help, got %v", err)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		err := Run(context.Background(), []string{"unknown-command"})
		if err == nil {
			t.Fatal("expected error for unknown command, got nil")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	old := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = old })

	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "taskboard version 1.2.3" {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		isolate(t)
		out, _, err := execute(t, "config", "--example")
		if err != nil {
			t.Fatalf("config --example: %v", err)
		}
		if out != config.ExampleConfig() {
			t.Error("example output differs from ExampleConfig")
		}
	})

	t.Run("sources", func(t *testing.T) {
		_, work := isolate(t)
		if err := os.WriteFile(filepath.Join(work, "taskboard.toml"), []byte("baud = 9600\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("TASKBOARD_LOG_LEVEL", "debug")

		out, _, err := execute(t, "config", "--port", "/dev/ttyACM0")
		if err != nil {
			t.Fatalf("config: %v", err)
		}
		for _, want := range []string{
			"# read taskboard.toml",
			"baud ",
			"project file",
			"environment",
			"/dev/ttyACM0",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		for _, line := range strings.Split(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			switch fields[0] {
			case "baud":
				if fields[1] != "9600" {
					t.Errorf("baud line %q", line)
				}
			case "port":
				if !strings.HasSuffix(line, "flag") {
					t.Errorf("port line %q", line)
				}
			case "log_level":
				if fields[1] != "debug" {
					t.Errorf("log_level line %q", line)
				}
			}
		}
	})

	t.Run("bad config file", func(t *testing.T) {
		_, work := isolate(t)
		if err := os.WriteFile(filepath.Join(work, "taskboard.toml"), []byte("nonsense = 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := execute(t, "config"); err == nil {
			t.Error("expected an error for an unknown key")
		}
	})
}

func TestDoctorCommand(t *testing.T) {
	t.Run("passes with defaults", func(t *testing.T) {
		home, _ := isolate(t)
		out, _, err := execute(t, "doctor")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		if strings.Contains(out, "❌") {
			t.Errorf("unexpected failure:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(home, ".taskboard", "logs")); err != nil {
			t.Errorf("log dir not created: %v", err)
		}
	})

	t.Run("reports a broken store", func(t *testing.T) {
		isolate(t)
		t.Setenv("TASKBOARD_STORE_BACKEND", "tape")
		out, _, err := execute(t, "doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("expected doctor failure, got %v", err)
		}
		if !strings.Contains(out, "tape") {
			t.Errorf("output does not name the backend:\n%s", out)
		}
	})

	t.Run("reports an invalid saved list", func(t *testing.T) {
		home, _ := isolate(t)
		dir := filepath.Join(home, "store")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, tasks.BlobKey+".json"), []byte(`{"tasks": 3}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := checkStore("file", dir); err == nil {
			t.Error("expected an invalid blob error")
		}
	})
}

func TestTailCommand(t *testing.T) {
	t.Run("no logs", func(t *testing.T) {
		isolate(t)
		out, _, err := execute(t, "tail")
		if err != nil {
			t.Fatalf("tail: %v", err)
		}
		if !strings.Contains(out, "No log files found.") {
			t.Errorf("output %q", out)
		}
	})

	t.Run("last lines of the newest session", func(t *testing.T) {
		home, _ := isolate(t)
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		logDir, err := logging.FindLogDir(filepath.Join(home, ".taskboard", "logs"), wd)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			t.Fatal(err)
		}
		body := "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n"
		if err := os.WriteFile(filepath.Join(logDir, "20240101-000000-abcd1234.jsonl"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}

		out, _, err := execute(t, "tail", "-n", "2")
		if err != nil {
			t.Fatalf("tail: %v", err)
		}
		if out != "{\"n\":2}\n{\"n\":3}\n" {
			t.Errorf("tail output %q", out)
		}

		out, _, err = execute(t, "tail", "--sessions")
		if err != nil {
			t.Fatalf("tail --sessions: %v", err)
		}
		if !strings.Contains(out, "20240101-000000-abcd1234") {
			t.Errorf("sessions output %q", out)
		}

		if _, _, err := execute(t, "tail", "nope"); err == nil {
			t.Error("expected an error for an unknown session")
		}
	})
}

func TestPCCommandsNeedAPort(t *testing.T) {
	isolate(t)
	for _, sub := range []string{"list", "watch"} {
		for _, port := range []string{"stdio", "pty"} {
			_, _, err := execute(t, "pc", sub, "--port", port)
			if err == nil || !strings.Contains(err.Error(), "board's port") {
				t.Errorf("pc %s on port %s: got %v", sub, port, err)
			}
		}
	}
	if _, _, err := execute(t, "pc", "watch", "--port", "/dev/null", "--list-interval-s", "0"); err == nil || !strings.Contains(err.Error(), "list_interval_s") {
		t.Errorf("watch with a zero interval: got %v", err)
	}

	if _, _, err := execute(t, "pc", "add", "x", "--status", "someday"); err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Errorf("bad status: got %v", err)
	}
	if _, _, err := execute(t, "pc", "clear", "--port", "/dev/null"); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("clear without --yes: got %v", err)
	}
	if _, _, err := execute(t, "run", "--port", "pty"); err == nil {
		t.Error("run accepted the pty port")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{"-1", 0, true},
		{"two", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestDocumentFormat(t *testing.T) {
	tests := []struct {
		explicit, path string
		want           string
		wantErr        bool
	}{
		{"", "-", "json", false},
		{"", "out.yaml", "yaml", false},
		{"", "out.txt", "json", false},
		{"yml", "out.json", "yaml", false},
		{"csv", "out.json", "", true},
	}
	for _, tt := range tests {
		got, err := documentFormat(tt.explicit, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("documentFormat(%q, %q) err = %v", tt.explicit, tt.path, err)
			continue
		}
		if !tt.wantErr && string(got) != tt.want {
			t.Errorf("documentFormat(%q, %q) = %s, want %s", tt.explicit, tt.path, got, tt.want)
		}
	}
}

func TestPrintTasks(t *testing.T) {
	list := []tasks.Task{
		{Title: "Ship", Month: "June", Day: 5, Time: "5:00 PM", Priority: true, Status: tasks.StatusInProgress, Notes: "tag it"},
		{Title: "Plan"},
	}

	var b bytes.Buffer
	if err := printTasks(&b, list, "text"); err != nil {
		t.Fatal(err)
	}
	want := " 0. Ship  June 5  5:00 PM  EOD  [In Progress]\n    tag it\n 1. Plan\n"
	if b.String() != want {
		t.Errorf("text output:\n%q\nwant\n%q", b.String(), want)
	}

	b.Reset()
	if err := printTasks(&b, nil, ""); err != nil {
		t.Fatal(err)
	}
	if b.String() != "No tasks.\n" {
		t.Errorf("empty output %q", b.String())
	}

	b.Reset()
	if err := printTasks(&b, list, "json"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "{\n  \"tasks\": [") {
		t.Errorf("json output %q", b.String())
	}

	if err := printTasks(&b, list, "xml"); err == nil {
		t.Error("expected an error for xml")
	}
}
