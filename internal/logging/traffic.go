package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Direction tags a traffic event.
type Direction string

const (
	DirIn   Direction = "in"
	DirOut  Direction = "out"
	DirNote Direction = "note"
)

// Event is one traffic log record.
type Event struct {
	Time time.Time `json:"ts"`
	Dir  Direction `json:"dir"`
	Line string    `json:"line,omitempty"`
	// Note carries a short outcome such as "ignored" or "duplicate".
	Note string `json:"note,omitempty"`
}

// Writer records traffic events.
type Writer interface {
	Write(ev Event) error
}

// JSONLWriter writes one JSON object per event.
type JSONLWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLWriter returns a writer appending to w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

// Write appends ev as one line.
func (j *JSONLWriter) Write(ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal traffic event: %w", err)
	}
	data = append(data, '\n')
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.w.Write(data)
	return err
}

// ConsoleWriter mirrors traffic onto a console logger at debug level.
type ConsoleWriter struct {
	logger *log.Logger
}

// NewConsoleWriter returns a writer logging through logger.
func NewConsoleWriter(logger *log.Logger) *ConsoleWriter {
	return &ConsoleWriter{logger: logger}
}

// Write logs ev.
func (c *ConsoleWriter) Write(ev Event) error {
	fields := []any{"dir", string(ev.Dir)}
	if ev.Note != "" {
		fields = append(fields, "note", ev.Note)
	}
	msg := ev.Line
	if msg == "" {
		msg = ev.Note
	}
	c.logger.Debug(msg, fields...)
	return nil
}

// MultiWriter fans events out to several writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a writer over ws; nil entries are skipped.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	m := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// Write sends ev to every writer and joins their errors.
func (m *MultiWriter) Write(ev Event) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NullWriter drops events.
type NullWriter struct{}

// Write does nothing.
func (NullWriter) Write(Event) error { return nil }
