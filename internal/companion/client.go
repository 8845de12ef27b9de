// Package companion is the PC side of the serial link. It keeps a local
// mirror of the board's task list, issues commands and folds the board's
// replies and notices back into the mirror.
package companion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/protocol"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

var (
	// ErrTimeout is returned when the board does not send a task list in
	// time.
	ErrTimeout = errors.New("timed out waiting for board")
	// ErrLinkClosed is returned when the inbound stream ends.
	ErrLinkClosed = errors.New("serial link closed")
)

// DefaultNotesMax is the longest notes text sent to the board.
const DefaultNotesMax = 180

// maxDumpLine bounds one board line. A full list with long notes is far
// longer than any command.
const maxDumpLine = 64 * 1024

// Options configures a Client.
type Options struct {
	// MirrorPath is the local tasks file. Empty disables the mirror.
	MirrorPath string
	NotesMax   int
	// ReplyTimeout bounds each wait for a task list. Zero waits until the
	// context is done.
	ReplyTimeout time.Duration
	Now          func() time.Time
	Logger       *log.Logger
	Traffic      logging.Writer
}

// Client talks to one board.
type Client struct {
	out    io.Writer
	in     <-chan []byte
	framer *protocol.Framer

	opts    Options
	logger  *log.Logger
	traffic logging.Writer

	cache      []tasks.Task
	duplicates []string
}

// New returns a client writing commands to out and reading board lines
// from in.
func New(out io.Writer, in <-chan []byte, opts Options) *Client {
	if opts.NotesMax == 0 {
		opts.NotesMax = DefaultNotesMax
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Traffic == nil {
		opts.Traffic = logging.NullWriter{}
	}
	return &Client{
		out:     out,
		in:      in,
		framer:  protocol.NewFramer(maxDumpLine),
		opts:    opts,
		logger:  opts.Logger,
		traffic: opts.Traffic,
	}
}

// Tasks returns a copy of the mirrored list.
func (c *Client) Tasks() []tasks.Task {
	return append([]tasks.Task(nil), c.cache...)
}

// Duplicates returns the titles the board reported as duplicates.
func (c *Client) Duplicates() []string {
	return append([]string(nil), c.duplicates...)
}

// LoadMirror replaces the in-memory list with the mirror file.
func (c *Client) LoadMirror() error {
	if c.opts.MirrorPath == "" {
		return nil
	}
	list, err := LoadMirror(c.opts.MirrorPath)
	if err != nil {
		return err
	}
	c.cache = list
	return nil
}

func (c *Client) saveMirror() error {
	if c.opts.MirrorPath == "" {
		return nil
	}
	return SaveMirror(c.opts.MirrorPath, c.cache)
}

// Connect synchronizes the board clock, pushes the local list and waits
// for the board's list.
func (c *Client) Connect(ctx context.Context) ([]tasks.Task, error) {
	if err := c.SyncTime(); err != nil {
		return nil, err
	}
	_, list, err := c.Push(ctx)
	return list, err
}

// SyncTime sends the local wall time as SET_TIME and the Unix time as TIME.
func (c *Client) SyncTime() error {
	now := c.opts.Now()
	if err := c.send(protocol.NewSetTime(now.Hour(), now.Minute())); err != nil {
		return err
	}
	return c.send(protocol.NewTime(now.Unix()))
}

// List asks for the board's list and mirrors it.
func (c *Client) List(ctx context.Context) ([]tasks.Task, error) {
	if err := c.send(protocol.NewListTasks()); err != nil {
		return nil, err
	}
	return c.waitDump(ctx)
}

// Push sends every local task once, keyed on title, month and day, then
// refreshes from the board. The board drops the ones it already has.
func (c *Client) Push(ctx context.Context) (int, []tasks.Task, error) {
	sent := 0
	seen := make(map[string]bool)
	for _, t := range c.cache {
		key := pushKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := c.send(protocol.NewAdd(t, c.opts.NotesMax)); err != nil {
			return sent, nil, err
		}
		sent++
	}
	list, err := c.List(ctx)
	return sent, list, err
}

func pushKey(t tasks.Task) string {
	month := t.Month
	if month == "" {
		month = tasks.NoDateMonth
	}
	return fmt.Sprintf("%s_%s_%d", t.Title, month, t.Day)
}

// Add appends t locally, sends it and refreshes from the board.
func (c *Client) Add(ctx context.Context, t tasks.Task) ([]tasks.Task, error) {
	t = t.Normalize()
	t.Notes = protocol.TruncateNotes(t.Notes, c.opts.NotesMax)
	c.cache = append(c.cache, t)
	if err := c.saveMirror(); err != nil {
		return nil, err
	}
	if err := c.send(protocol.NewAdd(t, c.opts.NotesMax)); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Edit applies p to task id locally and on the board.
func (c *Client) Edit(ctx context.Context, id int, p tasks.Patch) ([]tasks.Task, error) {
	if p.IsEmpty() {
		return nil, errors.New("edit changes nothing")
	}
	if id >= 0 && id < len(c.cache) {
		c.cache[id] = p.Apply(c.cache[id])
		if err := c.saveMirror(); err != nil {
			return nil, err
		}
	}
	if err := c.send(protocol.NewEdit(id, p, c.opts.NotesMax)); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Delete removes task id locally and on the board.
func (c *Client) Delete(ctx context.Context, id int) ([]tasks.Task, error) {
	if id >= 0 && id < len(c.cache) {
		c.cache = append(c.cache[:id], c.cache[id+1:]...)
		if err := c.saveMirror(); err != nil {
			return nil, err
		}
	}
	if err := c.send(protocol.NewDelete(id)); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Move reorders locally and on the board.
func (c *Client) Move(ctx context.Context, src, dst int) ([]tasks.Task, error) {
	if moveTask(c.cache, src, dst) {
		if err := c.saveMirror(); err != nil {
			return nil, err
		}
	}
	if err := c.send(protocol.NewMove(src, dst)); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Clear empties the board. The board answers with its (empty) list.
func (c *Client) Clear(ctx context.Context) ([]tasks.Task, error) {
	c.cache = nil
	if err := c.saveMirror(); err != nil {
		return nil, err
	}
	if err := c.send(protocol.NewClearAll()); err != nil {
		return nil, err
	}
	return c.waitDump(ctx)
}

// Screen forces the backlight on or off. The board does not answer.
func (c *Client) Screen(on bool) error {
	return c.send(protocol.NewScreen(on))
}

// Export writes the mirrored list to w.
func (c *Client) Export(w io.Writer, f Format) error {
	return WriteDocument(w, c.cache, f)
}

// ImportResult counts what an import did.
type ImportResult struct {
	Added   int
	Skipped int
}

// Import merges a task document into the list. Tasks matching an existing
// one on title, month, day, time and priority are skipped; the rest are
// sent to the board. The list is then refreshed from the board.
func (c *Client) Import(ctx context.Context, r io.Reader, f Format) (ImportResult, []tasks.Task, error) {
	var res ImportResult
	incoming, err := ReadDocument(r, f)
	if err != nil {
		return res, nil, err
	}
	for _, t := range incoming {
		if tasks.IndexOfDuplicate(c.cache, t) >= 0 {
			res.Skipped++
			continue
		}
		c.cache = append(c.cache, t)
		if err := c.send(protocol.NewAdd(t, c.opts.NotesMax)); err != nil {
			return res, nil, err
		}
		res.Added++
	}
	if err := c.saveMirror(); err != nil {
		return res, nil, err
	}
	list, err := c.List(ctx)
	return res, list, err
}

// Drain handles whatever the board has already sent without waiting.
func (c *Client) Drain() (int, error) {
	n := 0
	for {
		select {
		case chunk, ok := <-c.in:
			if !ok {
				return n, ErrLinkClosed
			}
			for _, line := range c.framer.Feed(chunk) {
				c.handle(line)
				n++
			}
		default:
			return n, nil
		}
	}
}

func (c *Client) waitDump(ctx context.Context) ([]tasks.Task, error) {
	if c.opts.ReplyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ReplyTimeout)
		defer cancel()
	}
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		case chunk, ok := <-c.in:
			if !ok {
				return nil, ErrLinkClosed
			}
			got := false
			for _, line := range c.framer.Feed(chunk) {
				if c.handle(line) == protocol.EventDump {
					got = true
				}
			}
			if got {
				return c.Tasks(), nil
			}
		}
	}
}

// handle folds one board line into the mirror.
func (c *Client) handle(line string) protocol.EventKind {
	c.record(logging.DirIn, line)
	ev := protocol.ParseEvent(line)
	switch ev.Kind {
	case protocol.EventDump:
		c.cache = ev.Tasks
	case protocol.EventDuplicate:
		c.duplicates = append(c.duplicates, ev.Title)
		c.logger.Info("board skipped duplicate", "title", ev.Title)
		return ev.Kind
	case protocol.EventMove:
		if !moveTask(c.cache, ev.Src, ev.Dst) {
			return ev.Kind
		}
		c.logger.Info("board moved task", "src", ev.Src, "dst", ev.Dst)
	case protocol.EventStatusEdit:
		if ev.ID < 0 || ev.ID >= len(c.cache) {
			return ev.Kind
		}
		c.cache[ev.ID].Status = ev.Status
		c.logger.Info("board changed status", "id", ev.ID, "status", string(ev.Status))
	default:
		c.logger.Debug("board", "line", line)
		return ev.Kind
	}
	if err := c.saveMirror(); err != nil {
		c.logger.Warn("save mirror failed", "err", err)
	}
	return ev.Kind
}

func (c *Client) send(v any) error {
	line, err := protocol.Line(v)
	if err != nil {
		return err
	}
	c.record(logging.DirOut, string(line[:len(line)-1]))
	if _, err := c.out.Write(line); err != nil {
		return fmt.Errorf("write to board: %w", err)
	}
	return nil
}

func (c *Client) record(dir logging.Direction, line string) {
	if err := c.traffic.Write(logging.Event{Dir: dir, Line: line}); err != nil {
		c.logger.Debug("traffic log write failed", "err", err)
	}
}

// moveTask moves list[src] to dst in place, shifting the tasks between.
func moveTask(list []tasks.Task, src, dst int) bool {
	if src < 0 || dst < 0 || src >= len(list) || dst >= len(list) || src == dst {
		return false
	}
	moved := list[src]
	if src < dst {
		copy(list[src:dst], list[src+1:dst+1])
	} else {
		copy(list[dst+1:src+1], list[dst:src])
	}
	list[dst] = moved
	return true
}
