package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/taskboard-go/internal/companion"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// printTasks writes list as text, or as a task document for json and yaml.
func printTasks(w io.Writer, list []tasks.Task, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
	default:
		f, err := companion.ParseFormat(format)
		if err != nil {
			return fmt.Errorf("output: %w (expected text, json or yaml)", err)
		}
		return companion.WriteDocument(w, list, f)
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	for i, t := range list {
		fmt.Fprintf(w, "%2d. %s\n", i, taskLine(t))
		if t.Notes != "" {
			fmt.Fprintf(w, "    %s\n", t.Notes)
		}
	}
	return nil
}

func taskLine(t tasks.Task) string {
	parts := []string{t.Title}
	if t.HasDate() {
		parts = append(parts, fmt.Sprintf("%s %d", t.Month, t.Day))
	}
	if t.Time != "" {
		parts = append(parts, t.Time)
	}
	if t.Priority {
		parts = append(parts, "EOD")
	}
	if t.Status != tasks.StatusNone {
		parts = append(parts, "["+string(t.Status)+"]")
	}
	return strings.Join(parts, "  ")
}
