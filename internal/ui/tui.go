// Package ui provides the terminal simulator: the board's panel drawn in
// terminal cells, mouse clicks as touches and the device loop ticking
// inside the bubbletea update loop.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/nibzard/taskboard-go/internal/board"
	"github.com/nibzard/taskboard-go/internal/device"
)

// TapSource turns clicks into touch samples. Each tap reads as pressed
// once and released on the next poll.
type TapSource struct {
	taps []tap
	held bool
}

type tap struct{ x, y int }

var _ board.TouchSource = (*TapSource)(nil)

// Tap queues a touch at panel pixel x, y.
func (s *TapSource) Tap(x, y int) {
	s.taps = append(s.taps, tap{x, y})
}

// Pending returns the number of queued taps.
func (s *TapSource) Pending() int { return len(s.taps) }

// Touch implements board.TouchSource.
func (s *TapSource) Touch() (int, int, bool) {
	if s.held {
		s.held = false
		return 0, 0, false
	}
	if len(s.taps) == 0 {
		return 0, 0, false
	}
	t := s.taps[0]
	s.taps = s.taps[1:]
	s.held = true
	return t.x, t.y, true
}

type keyMap struct {
	Quit   key.Binding
	Screen key.Binding
	Sync   key.Binding
	Mode   key.Binding
	Help   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Screen: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "screen on/off")),
		Sync:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set clock to local time")),
		Mode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "tap edit/move toggle")),
		Help:   key.NewBinding(key.WithKeys("?", "h"), key.WithHelp("?", "toggle help")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Mode, k.Screen, k.Sync, k.Help, k.Quit}
}

// Options configures the simulator model.
type Options struct {
	// Port is shown in the status line so a companion knows where to
	// connect.
	Port         string
	TickInterval time.Duration
	Now          func() time.Time
}

// Model is the bubbletea model of the simulator.
type Model struct {
	app    *device.App
	canvas *Canvas
	touch  *TapSource
	keys   keyMap

	port         string
	tickInterval time.Duration
	now          func() time.Time

	booted   bool
	lines    int
	handled  int
	linkDown bool
	showHelp bool
	width    int
}

type tickMsg time.Time

// NewModel returns a simulator for app, which must have been built with
// canvas as its renderer and touch as its touch source.
func NewModel(app *device.App, canvas *Canvas, touch *TapSource, opts Options) *Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = device.DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Model{
		app:          app,
		canvas:       canvas,
		touch:        touch,
		keys:         newKeyMap(),
		port:         opts.Port,
		tickInterval: opts.TickInterval,
		now:          opts.Now,
	}
}

// Run starts the simulator full screen until the user quits or ctx ends.
func Run(ctx context.Context, m *Model) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("sim requires a TTY")
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	m.boot()
	return tickCmd(m.tickInterval)
}

func (m *Model) boot() {
	if m.booted {
		return
	}
	m.booted = true
	m.app.Boot()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Screen):
			m.app.SetScreen(!m.app.UI().ScreenOn())
		case key.Matches(msg, m.keys.Sync):
			now := m.now()
			m.app.SetTime(now.Hour()*60 + now.Minute())
		case key.Matches(msg, m.keys.Mode):
			m.touch.Tap(board.ToggleX+(board.Width-board.ToggleX)/2, board.TopBarHeight/2)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
		return m, nil
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.step()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

// click maps a terminal cell to a touch. The panel sits inside a one
// cell border.
func (m *Model) click(col, row int) bool {
	col, row = col-1, row-1
	if col < 0 || row < 0 || col >= m.canvas.Cols() || row >= m.canvas.Rows() {
		return false
	}
	x, y := m.canvas.CellCenter(col, row)
	if x >= board.Width || y >= board.Height {
		return false
	}
	m.touch.Tap(x, y)
	return true
}

func (m *Model) step() {
	m.boot()
	st := m.app.Step()
	m.lines += st.Lines
	m.handled += st.Handled
	if st.LinkDown {
		m.linkDown = true
	}
}

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5f5f5f"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a0a0a0"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#707070"))
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(panelStyle.Render(m.canvas.Render()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.fit(m.statusLine())))
	b.WriteString("\n")
	if m.showHelp {
		for _, k := range m.keys.bindings() {
			h := k.Help()
			b.WriteString(helpStyle.Render(m.fit(fmt.Sprintf("  %-4s %s", h.Key, h.Desc))))
			b.WriteString("\n")
		}
		return b.String()
	}
	b.WriteString(helpStyle.Render(m.fit("click to touch | ? for help | q to quit")))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) statusLine() string {
	ui := m.app.UI()
	link := m.port
	if link == "" {
		link = "offline"
	}
	if m.linkDown {
		link += " (closed)"
	}
	screen := "on"
	if !ui.ScreenOn() {
		screen = "off"
	}
	return fmt.Sprintf("link %s | rx %d/%d | %s | %s | screen %s | %d tasks",
		link, m.handled, m.lines, ui.View().Kind, ui.Mode(), screen, m.app.Store().Len())
}

// fit truncates s to the terminal width once it is known.
func (m *Model) fit(s string) string {
	if m.width <= 0 || xansi.StringWidth(s) <= m.width {
		return s
	}
	return xansi.Truncate(s, m.width, "…")
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
