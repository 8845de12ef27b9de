package protocol

import (
	"strings"

	"github.com/nibzard/taskboard-go/internal/utils"
)

// Command selects the behavior of an inbound line.
type Command string

const (
	CmdAddTask    Command = "ADD_TASK"
	CmdEditTask   Command = "EDIT_TASK"
	CmdDeleteTask Command = "DELETE_TASK"
	CmdClearAll   Command = "CLEAR_ALL"
	CmdListTasks  Command = "LIST_TASKS"
	CmdMoveTask   Command = "MOVE_TASK"
	CmdSetTime    Command = "SET_TIME"
	CmdTime       Command = "TIME"
	CmdScreen     Command = "SCREEN"
)

// Commands lists every inbound command.
func Commands() []Command {
	return []Command{
		CmdAddTask, CmdEditTask, CmdDeleteTask, CmdClearAll, CmdListTasks,
		CmdMoveTask, CmdSetTime, CmdTime, CmdScreen,
	}
}

// Known reports whether c is an inbound command.
func (c Command) Known() bool {
	for _, k := range Commands() {
		if c == k {
			return true
		}
	}
	return false
}

// EventDuplicateSkipped is the event tag sent when an add is rejected as a
// duplicate.
const EventDuplicateSkipped = "duplicate_skipped"

// Message is a decoded inbound line.
type Message struct {
	Cmd    Command
	Fields utils.Fields
}

// Decode parses one line. It reports false for lines that are not a JSON
// object or that carry no known command.
func Decode(line string) (Message, bool) {
	f, err := utils.DecodeFields([]byte(line))
	if err != nil {
		return Message{}, false
	}
	name, ok := f.String("cmd")
	if !ok {
		return Message{}, false
	}
	cmd := Command(strings.ToUpper(strings.TrimSpace(name)))
	if !cmd.Known() {
		return Message{}, false
	}
	return Message{Cmd: cmd, Fields: f}, true
}
