package tasks

import (
	"strings"

	"github.com/nibzard/taskboard-go/internal/utils"
)

// Status is one of the fixed task statuses. The zero value means no status.
type Status string

const (
	StatusNone        Status = ""
	StatusInProgress  Status = "In Progress"
	StatusPaused      Status = "Paused"
	StatusWaitingOn   Status = "Waiting On"
	StatusDone        Status = "Done"
	StatusReadyToShip Status = "Ready to Ship"
)

// Statuses lists the named statuses in popup order.
func Statuses() []Status {
	return []Status{
		StatusInProgress,
		StatusPaused,
		StatusWaitingOn,
		StatusDone,
		StatusReadyToShip,
	}
}

// ParseStatus maps free text onto a Status. Matching ignores case and
// surrounding space. "NULL", "None" and unknown values map to StatusNone;
// ok is false only for unknown values.
func ParseStatus(s string) (Status, bool) {
	key := utils.NormalizeKeyword(s)
	switch key {
	case "", "null", "none":
		return StatusNone, true
	}
	for _, st := range Statuses() {
		if utils.NormalizeKeyword(string(st)) == key {
			return st, true
		}
	}
	return StatusNone, false
}

// NoDateMonth is the companion's placeholder for an undated task.
const NoDateMonth = "None"

// DefaultTitle is used when a task arrives without one.
const DefaultTitle = "Untitled"

// Task is a single to-do record.
type Task struct {
	Title    string
	Month    string
	Day      int
	Time     string
	Priority bool // end-of-day flag
	Status   Status
	Notes    string
}

// HasDate reports whether the task carries a month/day label.
func (t Task) HasDate() bool {
	return t.Day > 0 && normalizeMonth(t.Month) != ""
}

// DuplicateOf reports whether t and o are equal on title, month, day, time
// and priority.
func (t Task) DuplicateOf(o Task) bool {
	return t.Title == o.Title &&
		normalizeMonth(t.Month) == normalizeMonth(o.Month) &&
		t.Day == o.Day &&
		t.Time == o.Time &&
		t.Priority == o.Priority
}

// IndexOfDuplicate returns the index of the first task in list that
// duplicates t, or -1.
func IndexOfDuplicate(list []Task, t Task) int {
	for i := range list {
		if list[i].DuplicateOf(t) {
			return i
		}
	}
	return -1
}

// Normalize applies ingestion defaults: a title, a clean status and notes,
// and a non-negative day.
func (t Task) Normalize() Task {
	if strings.TrimSpace(t.Title) == "" {
		t.Title = DefaultTitle
	}
	t.Status, _ = ParseStatus(string(t.Status))
	t.Notes = normalizeText(t.Notes)
	if t.Day < 0 {
		t.Day = 0
	}
	return t
}

// Patch carries the fields of a partial edit. Nil fields are left unchanged.
type Patch struct {
	Title    *string
	Month    *string
	Day      *int
	Time     *string
	Priority *bool
	Status   *Status
	Notes    *string
}

// StatusPatch returns a patch that sets only the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Month == nil && p.Day == nil && p.Time == nil &&
		p.Priority == nil && p.Status == nil && p.Notes == nil
}

// Apply returns t with the patch fields written over it.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Month != nil {
		t.Month = *p.Month
	}
	if p.Day != nil {
		t.Day = *p.Day
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t.Normalize()
}

func normalizeMonth(m string) string {
	m = strings.TrimSpace(m)
	if strings.EqualFold(m, NoDateMonth) || strings.EqualFold(m, "null") {
		return ""
	}
	return m
}

func normalizeText(s string) string {
	switch strings.TrimSpace(s) {
	case "NULL", "None":
		return ""
	}
	return s
}
