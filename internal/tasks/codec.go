package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nibzard/taskboard-go/internal/utils"
)

// Record is the wire and storage shape of a task.
type Record struct {
	Title    string `json:"title" yaml:"title"`
	Month    string `json:"month" yaml:"month"`
	Day      int    `json:"day" yaml:"day"`
	Time     string `json:"time" yaml:"time"`
	Priority int    `json:"priority" yaml:"priority"`
	Status   string `json:"status" yaml:"status"`
	Notes    string `json:"notes" yaml:"notes"`
}

// Document is the top-level blob and dump shape.
type Document struct {
	Tasks []Record `json:"tasks" yaml:"tasks"`
}

// ToRecord converts t to its wire shape.
func (t Task) ToRecord() Record {
	r := Record{
		Title:  t.Title,
		Month:  t.Month,
		Day:    t.Day,
		Time:   t.Time,
		Status: string(t.Status),
		Notes:  t.Notes,
	}
	if t.Priority {
		r.Priority = 1
	}
	return r
}

// Task converts r back into a normalized task.
func (r Record) Task() Task {
	return Task{
		Title:    r.Title,
		Month:    r.Month,
		Day:      r.Day,
		Time:     r.Time,
		Priority: r.Priority != 0,
		Status:   Status(r.Status),
		Notes:    r.Notes,
	}.Normalize()
}

// Records converts a list to wire records.
func Records(list []Task) []Record {
	out := make([]Record, len(list))
	for i, t := range list {
		out[i] = t.ToRecord()
	}
	return out
}

// Encode serializes list as a compact {"tasks":[...]} document.
func Encode(list []Task) ([]byte, error) {
	data, err := json.Marshal(Document{Tasks: Records(list)})
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Decode parses a {"tasks":[...]} document or a bare task array. Fields
// are read leniently and missing ones take their defaults. Elements that
// are not objects are skipped. The result is not truncated to capacity.
func Decode(data []byte) ([]Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty task document")
	}

	var raw []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("parse task list: %w", err)
		}
	} else {
		var doc struct {
			Tasks []json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse task document: %w", err)
		}
		raw = doc.Tasks
	}

	list := make([]Task, 0, len(raw))
	for _, elem := range raw {
		f, err := utils.DecodeFields(elem)
		if err != nil {
			continue
		}
		list = append(list, FromFields(f))
	}
	return list, nil
}

// FromFields builds a task from a decoded JSON object, applying defaults
// for absent fields.
func FromFields(f utils.Fields) Task {
	var t Task
	t.Title, _ = f.String("title")
	t.Month, _ = f.String("month")
	t.Day, _ = f.Int("day")
	t.Time, _ = f.String("time")
	t.Priority, _ = f.Bool("priority")
	status, _ := f.String("status")
	t.Status = Status(status)
	t.Notes, _ = f.String("notes")
	return t.Normalize()
}

// PatchFromFields builds a partial edit from the task fields present in f.
func PatchFromFields(f utils.Fields) Patch {
	var p Patch
	if v, ok := f.String("title"); ok {
		p.Title = &v
	}
	if v, ok := f.String("month"); ok {
		p.Month = &v
	}
	if v, ok := f.Int("day"); ok {
		p.Day = &v
	}
	if v, ok := f.String("time"); ok {
		p.Time = &v
	}
	if v, ok := f.Bool("priority"); ok {
		p.Priority = &v
	}
	if v, ok := f.String("status"); ok {
		st, _ := ParseStatus(v)
		p.Status = &st
	}
	if v, ok := f.String("notes"); ok {
		n := normalizeText(v)
		p.Notes = &n
	}
	return p
}
