package device

import (
	"github.com/nibzard/taskboard-go/internal/protocol"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

var _ protocol.Target = (*App)(nil)

// AddTask appends t. A duplicate is reported back to the PC.
func (a *App) AddTask(t tasks.Task) {
	switch a.store.Add(t) {
	case tasks.Inserted:
		a.ui.TasksChanged()
	case tasks.RejectedDuplicate:
		a.send(protocol.NewDuplicateSkipped(t.Normalize().Title))
	case tasks.RejectedFull:
		a.logger.Debug("add ignored, list full", "title", t.Title)
	}
}

// EditTask applies p to task id. An edit that would duplicate another
// task is refused and reported like a duplicate add.
func (a *App) EditTask(id int, p tasks.Patch) {
	switch a.store.Edit(id, p) {
	case tasks.OK:
		a.ui.TasksChanged()
	case tasks.RejectedDuplicate:
		t, _ := a.store.At(id)
		a.send(protocol.NewDuplicateSkipped(p.Apply(t).Title))
	}
}

// DeleteTask removes task id.
func (a *App) DeleteTask(id int) {
	if a.store.Delete(id).Changed() {
		a.ui.ListShifted()
	}
}

// ClearAll empties the list and sends the empty dump.
func (a *App) ClearAll() {
	a.store.ClearAll()
	a.ui.Reset()
	a.ui.TasksChanged()
	a.sendDump()
}

// ListTasks sends the full list.
func (a *App) ListTasks() {
	a.sendDump()
}

// MoveTask reorders the list on behalf of the PC. No notice is echoed.
func (a *App) MoveTask(src, dst int) {
	if a.store.Reorder(src, dst).Changed() {
		a.ui.ListShifted()
	}
}

// SetTime anchors the clock. Re-anchoring re-arms auto sleep.
func (a *App) SetTime(minutes int) {
	a.clock.SetAnchor(minutes)
	a.logger.Debug("clock set", "time", a.ui.TopBarText())
	a.ui.RefreshTopBar()
}

// SetScreen forces the backlight.
func (a *App) SetScreen(on bool) {
	a.ui.SetScreen(on)
}
