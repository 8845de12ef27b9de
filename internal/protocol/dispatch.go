package protocol

import (
	"strings"

	"github.com/nibzard/taskboard-go/internal/clock"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// Target receives decoded inbound commands.
type Target interface {
	AddTask(t tasks.Task)
	EditTask(id int, p tasks.Patch)
	DeleteTask(id int)
	ClearAll()
	ListTasks()
	MoveTask(src, dst int)
	SetTime(minutes int)
	SetScreen(on bool)
}

// Dispatcher maps messages onto a Target.
type Dispatcher struct {
	// UTCOffsetMinutes is added to TIME epochs before taking the time of day.
	UTCOffsetMinutes int
}

// Dispatch applies msg to t. It reports false when a required field is
// missing or invalid, in which case t is not called.
func (d Dispatcher) Dispatch(msg Message, t Target) bool {
	f := msg.Fields
	switch msg.Cmd {
	case CmdAddTask:
		t.AddTask(tasks.FromFields(f))
	case CmdEditTask:
		id, ok := f.Int("id")
		if !ok {
			return false
		}
		t.EditTask(id, tasks.PatchFromFields(f))
	case CmdDeleteTask:
		id, ok := f.Int("id")
		if !ok {
			return false
		}
		t.DeleteTask(id)
	case CmdClearAll:
		t.ClearAll()
	case CmdListTasks:
		t.ListTasks()
	case CmdMoveTask:
		src, ok1 := f.Int("src")
		dst, ok2 := f.Int("dst")
		if !ok1 || !ok2 {
			return false
		}
		t.MoveTask(src, dst)
	case CmdSetTime:
		hour, ok1 := f.Int("hour")
		minute, ok2 := f.Int("minute")
		if !ok1 || !ok2 {
			return false
		}
		minutes, ok := clock.FromHourMinute(hour, minute)
		if !ok {
			return false
		}
		t.SetTime(minutes)
	case CmdTime:
		epoch, ok := f.Int64("epoch")
		if !ok || epoch < 0 {
			return false
		}
		t.SetTime(clock.MinutesFromEpoch(epoch, d.UTCOffsetMinutes))
	case CmdScreen:
		state, _ := f.String("state")
		switch strings.ToUpper(strings.TrimSpace(state)) {
		case "ON":
			t.SetScreen(true)
		case "OFF":
			t.SetScreen(false)
		default:
			return false
		}
	default:
		return false
	}
	return true
}
