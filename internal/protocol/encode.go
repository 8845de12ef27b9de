package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nibzard/taskboard-go/internal/tasks"
)

// Encoder writes one JSON object per line.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Line marshals v as a single newline-terminated line.
func Line(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal line: %w", err)
	}
	return append(data, '\n'), nil
}

// Encode writes v as one line.
func (e *Encoder) Encode(v any) error {
	data, err := Line(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// Board to PC lines.

// DumpMsg is the full task list.
func DumpMsg(list []tasks.Task) tasks.Document {
	return tasks.Document{Tasks: tasks.Records(list)}
}

// DuplicateSkippedMsg reports an add rejected as a duplicate.
type DuplicateSkippedMsg struct {
	Event string `json:"event"`
	Title string `json:"title"`
}

// NewDuplicateSkipped returns the duplicate notice for title.
func NewDuplicateSkipped(title string) DuplicateSkippedMsg {
	return DuplicateSkippedMsg{Event: EventDuplicateSkipped, Title: title}
}

// MoveMsg is a reorder, sent either way.
type MoveMsg struct {
	Cmd Command `json:"cmd"`
	Src int     `json:"src"`
	Dst int     `json:"dst"`
}

// NewMove returns a MOVE_TASK line.
func NewMove(src, dst int) MoveMsg {
	return MoveMsg{Cmd: CmdMoveTask, Src: src, Dst: dst}
}

// StatusEditMsg is the board's notice of a status change made on screen.
type StatusEditMsg struct {
	Cmd    Command `json:"cmd"`
	ID     int     `json:"id"`
	Status string  `json:"status"`
}

// NewStatusEdit returns an EDIT_TASK status notice.
func NewStatusEdit(id int, status tasks.Status) StatusEditMsg {
	return StatusEditMsg{Cmd: CmdEditTask, ID: id, Status: string(status)}
}

// PC to board lines.

// AddMsg is an ADD_TASK command. Optional fields are omitted when empty.
type AddMsg struct {
	Cmd      Command `json:"cmd"`
	Title    string  `json:"title"`
	Month    string  `json:"month"`
	Day      int     `json:"day"`
	Priority int     `json:"priority"`
	Time     string  `json:"time,omitempty"`
	Status   string  `json:"status,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// NewAdd builds an ADD_TASK for t with notes cut to notesMax runes. An
// undated task is sent with month "None".
func NewAdd(t tasks.Task, notesMax int) AddMsg {
	r := t.ToRecord()
	month := r.Month
	if month == "" {
		month = tasks.NoDateMonth
	}
	return AddMsg{
		Cmd:      CmdAddTask,
		Title:    r.Title,
		Month:    month,
		Day:      r.Day,
		Priority: r.Priority,
		Time:     r.Time,
		Status:   r.Status,
		Notes:    TruncateNotes(r.Notes, notesMax),
	}
}

// EditMsg is a partial EDIT_TASK command.
type EditMsg struct {
	Cmd      Command `json:"cmd"`
	ID       int     `json:"id"`
	Title    *string `json:"title,omitempty"`
	Month    *string `json:"month,omitempty"`
	Day      *int    `json:"day,omitempty"`
	Time     *string `json:"time,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	Status   *string `json:"status,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// NewEdit builds an EDIT_TASK carrying only the fields set in p.
func NewEdit(id int, p tasks.Patch, notesMax int) EditMsg {
	m := EditMsg{Cmd: CmdEditTask, ID: id, Title: p.Title, Month: p.Month, Day: p.Day, Time: p.Time}
	if p.Priority != nil {
		v := 0
		if *p.Priority {
			v = 1
		}
		m.Priority = &v
	}
	if p.Status != nil {
		s := string(*p.Status)
		m.Status = &s
	}
	if p.Notes != nil {
		n := TruncateNotes(*p.Notes, notesMax)
		m.Notes = &n
	}
	return m
}

// IDMsg is a command addressing one task.
type IDMsg struct {
	Cmd Command `json:"cmd"`
	ID  int     `json:"id"`
}

// NewDelete returns a DELETE_TASK line.
func NewDelete(id int) IDMsg {
	return IDMsg{Cmd: CmdDeleteTask, ID: id}
}

// BareMsg is a command without arguments.
type BareMsg struct {
	Cmd Command `json:"cmd"`
}

// NewClearAll returns a CLEAR_ALL line.
func NewClearAll() BareMsg {
	return BareMsg{Cmd: CmdClearAll}
}

// NewListTasks returns a LIST_TASKS line.
func NewListTasks() BareMsg {
	return BareMsg{Cmd: CmdListTasks}
}

// SetTimeMsg anchors the board clock to a wall time.
type SetTimeMsg struct {
	Cmd    Command `json:"cmd"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
}

// NewSetTime returns a SET_TIME line.
func NewSetTime(hour, minute int) SetTimeMsg {
	return SetTimeMsg{Cmd: CmdSetTime, Hour: hour, Minute: minute}
}

// TimeMsg anchors the board clock to a Unix time.
type TimeMsg struct {
	Cmd   Command `json:"cmd"`
	Epoch int64   `json:"epoch"`
}

// NewTime returns a TIME line.
func NewTime(epoch int64) TimeMsg {
	return TimeMsg{Cmd: CmdTime, Epoch: epoch}
}

// ScreenMsg forces the backlight.
type ScreenMsg struct {
	Cmd   Command `json:"cmd"`
	State string  `json:"state"`
}

// NewScreen returns a SCREEN line.
func NewScreen(on bool) ScreenMsg {
	state := "OFF"
	if on {
		state = "ON"
	}
	return ScreenMsg{Cmd: CmdScreen, State: state}
}

// TruncateNotes cuts s to at most max runes. A non-positive max keeps s.
func TruncateNotes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
