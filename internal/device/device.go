// Package device runs the task board: one App owns the task store, the UI
// machine, the clock and the serial link, and a single cooperative loop
// drives all of them.
package device

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard-go/internal/board"
	"github.com/nibzard/taskboard-go/internal/clock"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/protocol"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// Defaults for Options fields left zero.
const (
	DefaultPollInterval = 20 * time.Millisecond
	DefaultDebounce     = 50 * time.Millisecond
	DefaultReleasePoll  = 10 * time.Millisecond
	DefaultSleepAt      = 17*60 + 10
	// maxReleasePolls bounds the wait for a finger to lift.
	maxReleasePolls = 500
)

// Options tunes the device loop.
type Options struct {
	PollInterval     time.Duration
	Debounce         time.Duration
	ReleasePoll      time.Duration
	SleepAt          int
	EODAt            int
	UTCOffsetMinutes int
	MaxLineLen       int

	Logger  *log.Logger
	Traffic logging.Writer
	// Sleep replaces time.Sleep for the debounce and release waits.
	Sleep func(time.Duration)
}

// Config wires an App to its collaborators. Inbound carries raw bytes
// from the serial pump; a nil Outbound drops every outbound line.
type Config struct {
	Store    *tasks.Store
	Clock    *clock.Clock
	Renderer board.Renderer
	Touch    board.TouchSource
	Inbound  <-chan []byte
	Outbound io.Writer
	Options  Options
}

// App is the device state aggregate. All methods must be called from the
// goroutine that runs the loop.
type App struct {
	store *tasks.Store
	clock *clock.Clock
	ui    *board.Machine
	touch board.TouchSource

	in         <-chan []byte
	out        io.Writer
	framer     *protocol.Framer
	dispatcher protocol.Dispatcher

	opts    Options
	logger  *log.Logger
	traffic logging.Writer
}

// Status summarizes one Step.
type Status struct {
	Lines    int
	Handled  int
	TopBar   bool
	Slept    bool
	Touched  bool
	LinkDown bool
}

// New builds an App. Nil Clock and Touch are replaced by a system clock
// and a panel that is never touched.
func New(cfg Config) *App {
	opts := cfg.Options
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ReleasePoll <= 0 {
		opts.ReleasePoll = DefaultReleasePoll
	}
	if opts.SleepAt == 0 {
		opts.SleepAt = DefaultSleepAt
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Traffic == nil {
		opts.Traffic = logging.NullWriter{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New(nil)
	}
	touch := cfg.Touch
	if touch == nil {
		touch = noTouch{}
	}

	return &App{
		store: cfg.Store,
		clock: clk,
		ui: board.New(cfg.Store, clk, cfg.Renderer, board.Options{
			EODAt:  opts.EODAt,
			Logger: opts.Logger,
		}),
		touch:      touch,
		in:         cfg.Inbound,
		out:        cfg.Outbound,
		framer:     protocol.NewFramer(opts.MaxLineLen),
		dispatcher: protocol.Dispatcher{UTCOffsetMinutes: opts.UTCOffsetMinutes},
		opts:       opts,
		logger:     opts.Logger,
		traffic:    opts.Traffic,
	}
}

type noTouch struct{}

func (noTouch) Touch() (int, int, bool) { return 0, 0, false }

// UI returns the UI machine.
func (a *App) UI() *board.Machine { return a.ui }

// Store returns the task store.
func (a *App) Store() *tasks.Store { return a.store }

// Clock returns the device clock.
func (a *App) Clock() *clock.Clock { return a.clock }

// Boot loads the persisted list, draws the first frame and announces the
// list to the PC.
func (a *App) Boot() {
	n := a.store.Load()
	a.logger.Info("board started", "tasks", n)
	a.ui.Redraw()
	a.sendDump()
}

// Run boots the device and steps it every poll interval until ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.Boot()
	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if st := a.Step(); st.LinkDown {
			a.logger.Warn("serial link closed, continuing offline")
		}
	}
}

// Step runs one loop iteration: drain inbound bytes, refresh the top
// bar, check auto-sleep, then handle at most one touch.
func (a *App) Step() Status {
	var st Status
	a.drain(&st)
	st.TopBar = a.ui.RefreshTopBar()
	if a.clock.SleepDue(a.opts.SleepAt) {
		a.logger.Info("auto sleep")
		a.ui.Sleep()
		st.Slept = true
	}
	st.Touched = a.pollTouch()
	return st
}

func (a *App) drain(st *Status) {
	for a.in != nil {
		select {
		case chunk, ok := <-a.in:
			if !ok {
				a.in = nil
				st.LinkDown = true
				return
			}
			if len(chunk) == 0 {
				continue
			}
			a.ui.Wake()
			for _, line := range a.framer.Feed(chunk) {
				st.Lines++
				if a.HandleLine(line) {
					st.Handled++
				}
			}
		default:
			return
		}
	}
}

// HandleLine decodes and applies one inbound line. It reports false for
// lines that were ignored.
func (a *App) HandleLine(line string) bool {
	a.record(logging.DirIn, line, "")
	msg, ok := protocol.Decode(line)
	if !ok {
		a.logger.Debug("ignored line", "line", line)
		a.record(logging.DirNote, "", "ignored")
		return false
	}
	if !a.dispatcher.Dispatch(msg, a) {
		a.logger.Debug("invalid command", "cmd", msg.Cmd)
		a.record(logging.DirNote, "", "invalid "+string(msg.Cmd))
		return false
	}
	return true
}

func (a *App) pollTouch() bool {
	x, y, ok := a.touch.Touch()
	if !ok {
		return false
	}
	a.opts.Sleep(a.opts.Debounce)
	a.notify(a.ui.HandleTouch(x, y))
	for i := 0; i < maxReleasePolls; i++ {
		if _, _, down := a.touch.Touch(); !down {
			break
		}
		a.opts.Sleep(a.opts.ReleasePoll)
	}
	return true
}

func (a *App) notify(n board.Notice) {
	switch n.Kind {
	case board.NoticeMove:
		a.send(protocol.NewMove(n.Src, n.Dst))
	case board.NoticeStatus:
		a.send(protocol.NewStatusEdit(n.ID, n.Status))
	}
}

func (a *App) sendDump() {
	a.send(protocol.DumpMsg(a.store.Snapshot()))
}

func (a *App) send(v any) {
	line, err := protocol.Line(v)
	if err != nil {
		a.logger.Warn("encode outbound line", "err", err)
		return
	}
	a.record(logging.DirOut, string(line[:len(line)-1]), "")
	if a.out == nil {
		return
	}
	if _, err := a.out.Write(line); err != nil {
		a.logger.Debug("write outbound line", "err", err)
	}
}

func (a *App) record(dir logging.Direction, line, note string) {
	if err := a.traffic.Write(logging.Event{Dir: dir, Line: line, Note: note}); err != nil {
		a.logger.Debug("traffic log write failed", "err", err)
	}
}
