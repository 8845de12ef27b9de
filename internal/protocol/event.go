package protocol

import (
	"github.com/nibzard/taskboard-go/internal/tasks"
	"github.com/nibzard/taskboard-go/internal/utils"
)

// EventKind classifies a line received from the board.
type EventKind int

const (
	EventOther EventKind = iota
	EventDump
	EventDuplicate
	EventMove
	EventStatusEdit
)

func (k EventKind) String() string {
	switch k {
	case EventDump:
		return "dump"
	case EventDuplicate:
		return "duplicate_skipped"
	case EventMove:
		return "move"
	case EventStatusEdit:
		return "status_edit"
	default:
		return "other"
	}
}

// Event is a decoded board to PC line.
type Event struct {
	Kind   EventKind
	Tasks  []tasks.Task
	Title  string
	Src    int
	Dst    int
	ID     int
	Status tasks.Status
	Raw    string
}

// ParseEvent classifies line. Non-JSON diagnostics come back as EventOther
// with only Raw set.
func ParseEvent(line string) Event {
	ev := Event{Kind: EventOther, Raw: line}
	f, err := utils.DecodeFields([]byte(line))
	if err != nil {
		return ev
	}
	if _, ok := f["tasks"]; ok {
		list, err := tasks.Decode([]byte(line))
		if err == nil {
			ev.Kind = EventDump
			ev.Tasks = list
		}
		return ev
	}
	if name, _ := f.String("event"); name == EventDuplicateSkipped {
		ev.Kind = EventDuplicate
		ev.Title, _ = f.String("title")
		return ev
	}
	cmd, _ := f.String("cmd")
	switch Command(cmd) {
	case CmdMoveTask:
		src, ok1 := f.Int("src")
		dst, ok2 := f.Int("dst")
		if ok1 && ok2 {
			ev.Kind, ev.Src, ev.Dst = EventMove, src, dst
		}
	case CmdEditTask:
		id, ok := f.Int("id")
		status, hasStatus := f.String("status")
		if ok && hasStatus {
			ev.Kind, ev.ID = EventStatusEdit, id
			ev.Status, _ = tasks.ParseStatus(status)
		}
	}
	return ev
}
