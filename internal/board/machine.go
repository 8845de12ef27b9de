package board

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard-go/internal/clock"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// DefaultEODAt is the end-of-day target for the top-bar countdown (17:00).
const DefaultEODAt = 17 * 60

// Options tunes a Machine.
type Options struct {
	// EODAt is the countdown target in minutes of day.
	EODAt  int
	Logger *log.Logger
}

// Machine is the UI state machine. It is owned by the device loop and is
// not safe for concurrent use.
type Machine struct {
	store *tasks.Store
	clock *clock.Clock
	r     Renderer

	view        View
	mode        Mode
	top         int
	selected    int
	notesScroll int
	screenOn    bool
	lastBar     string

	eodAt  int
	logger *log.Logger
}

// New returns a machine showing the list view in edit mode with the screen
// on. Nothing is drawn until Redraw.
func New(store *tasks.Store, clk *clock.Clock, r Renderer, opts Options) *Machine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.EODAt == 0 {
		opts.EODAt = DefaultEODAt
	}
	return &Machine{
		store:    store,
		clock:    clk,
		r:        r,
		view:     ListView(),
		selected: -1,
		screenOn: true,
		eodAt:    clock.Wrap(opts.EODAt),
		logger:   opts.Logger,
	}
}

// View returns the current screen.
func (m *Machine) View() View { return m.view }

// Mode returns the row tap mode.
func (m *Machine) Mode() Mode { return m.mode }

// Top returns the index of the first visible task.
func (m *Machine) Top() int { return m.top }

// Selected returns the selected task index, or -1.
func (m *Machine) Selected() int { return m.selected }

// NotesScroll returns the details popup scroll offset in pixels.
func (m *Machine) NotesScroll() int { return m.notesScroll }

// ScreenOn reports whether the backlight is on.
func (m *Machine) ScreenOn() bool { return m.screenOn }

// maxTop is the largest allowed first visible index.
func (m *Machine) maxTop() int {
	if n := m.store.Len() - VisibleRows; n > 0 {
		return n
	}
	return 0
}

// Wake turns the screen on with a full redraw. It reports whether the
// screen was off.
func (m *Machine) Wake() bool {
	if m.screenOn {
		return false
	}
	m.screenOn = true
	m.r.SetBacklight(true)
	m.Redraw()
	m.logger.Debug("screen wake")
	return true
}

// Sleep blanks the panel and turns the backlight off.
func (m *Machine) Sleep() {
	if !m.screenOn {
		return
	}
	m.r.FillRect(0, 0, Width, Height, colorBlack)
	m.r.SetBacklight(false)
	m.screenOn = false
	m.lastBar = ""
	m.logger.Debug("screen sleep")
}

// SetScreen forces the screen on or off.
func (m *Machine) SetScreen(on bool) {
	if on {
		m.Wake()
		return
	}
	m.Sleep()
}

// Reset returns to the list view with scroll and selection cleared.
func (m *Machine) Reset() {
	m.view = ListView()
	m.top = 0
	m.selected = -1
	m.notesScroll = 0
}

// TasksChanged re-validates the view against the current list after a
// mutation made outside the machine and redraws. The first visible index
// is clamped, a selection past the end is cleared and a popup whose task
// no longer exists is closed.
func (m *Machine) TasksChanged() {
	if m.top > m.maxTop() {
		m.top = m.maxTop()
	}
	if m.selected >= m.store.Len() {
		m.selected = -1
	}
	if m.view.Popup() && !m.store.Valid(m.view.Index) {
		m.view = ListView()
		m.notesScroll = 0
	}
	m.Redraw()
}

// ListShifted is TasksChanged for a mutation that moved tasks to new
// indexes, such as a delete or reorder from the PC. An open popup and the
// move selection refer to indexes that may now name another task, so both
// are dropped.
func (m *Machine) ListShifted() {
	if m.view.Popup() {
		m.view = ListView()
		m.notesScroll = 0
	}
	m.selected = -1
	m.TasksChanged()
}

// HandleTouch applies one tap at x, y. A tap on a dark screen only wakes
// it. The returned notice is non-empty when the tap changed something the
// PC must mirror.
func (m *Machine) HandleTouch(x, y int) Notice {
	if m.Wake() {
		return Notice{}
	}
	switch m.view.Kind {
	case ViewDetails:
		m.touchDetails(x, y)
		return Notice{}
	case ViewStatus:
		return m.touchStatus(x, y)
	default:
		return m.touchList(x, y)
	}
}

func (m *Machine) touchList(x, y int) Notice {
	region, row := HitList(x, y)
	switch region {
	case RegionToggle:
		if m.mode == ModeEdit {
			m.mode = ModeMove
		} else {
			m.mode = ModeEdit
		}
		m.selected = -1
		m.drawTopBar(true)
		m.drawList()
		return Notice{}
	case RegionArrowUp:
		if m.top > 0 {
			m.top--
			m.drawList()
		}
		return Notice{}
	case RegionArrowDown:
		if m.top < m.maxTop() {
			m.top++
			m.drawList()
		}
		return Notice{}
	case RegionNone:
		return Notice{}
	}

	i := m.top + row
	if !m.store.Valid(i) {
		return Notice{}
	}
	if m.mode == ModeMove {
		return m.moveTap(i)
	}

	switch region {
	case RegionRowDetails:
		m.view = DetailsView(i)
		m.notesScroll = 0
		m.drawDetails()
	case RegionRowStatus:
		m.view = StatusView(i)
		m.drawStatus()
	default:
		m.selected = i
		m.drawList()
	}
	return Notice{}
}

func (m *Machine) moveTap(i int) Notice {
	if m.selected < 0 {
		m.selected = i
		m.drawList()
		return Notice{}
	}
	src := m.selected
	m.selected = -1
	outcome := m.store.Reorder(src, i)
	m.drawList()
	if outcome != tasks.OK {
		return Notice{}
	}
	m.logger.Debug("task moved", "src", src, "dst", i)
	return Notice{Kind: NoticeMove, Src: src, Dst: i}
}

func (m *Machine) touchDetails(x, y int) {
	switch {
	case closeRect.Contains(x, y):
		m.view = ListView()
		m.notesScroll = 0
		m.Redraw()
	case notesUpRect.Contains(x, y):
		m.notesScroll -= NotesStep
		if m.notesScroll < 0 {
			m.notesScroll = 0
		}
		m.drawNotes()
	case notesDownRect.Contains(x, y):
		m.notesScroll += NotesStep
		m.drawNotes()
	}
}

func (m *Machine) touchStatus(x, y int) Notice {
	opt := statusOption(x, y)
	if opt < 0 {
		return Notice{}
	}
	status := StatusOptions()[opt]
	i := m.view.Index
	outcome := m.store.Edit(i, tasks.StatusPatch(status))
	m.view = ListView()
	m.Redraw()
	if outcome != tasks.OK {
		return Notice{}
	}
	m.logger.Debug("status set", "id", i, "status", status)
	return Notice{Kind: NoticeStatus, ID: i, Status: status}
}

// StatusOptions lists the status popup rows: every named status followed
// by the clear option.
func StatusOptions() []tasks.Status {
	return append(tasks.Statuses(), tasks.StatusNone)
}

// TopBarText returns the current top-bar clock and countdown text.
func (m *Machine) TopBarText() string {
	now, ok := m.clock.Now()
	if !ok {
		return "--:--"
	}
	left, _ := m.clock.CountdownTo(m.eodAt)
	return clock.Format12h(now) + "  " + clock.FormatCountdown(left, "EOD", "EOD reached")
}

// RefreshTopBar redraws the top bar when its text changed since the last
// draw. It reports whether anything was drawn.
func (m *Machine) RefreshTopBar() bool {
	if !m.screenOn {
		return false
	}
	return m.drawTopBar(false)
}
