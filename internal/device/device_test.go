package device

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/taskboard-go/internal/board"
	"github.com/nibzard/taskboard-go/internal/clock"
	"github.com/nibzard/taskboard-go/internal/logging"
	"github.com/nibzard/taskboard-go/internal/storage"
	"github.com/nibzard/taskboard-go/internal/tasks"
)

type nopRenderer struct{ backlight bool }

func (nopRenderer) FillRect(x, y, w, h int, c board.Color) {}
func (nopRenderer) DrawRect(x, y, w, h int, c board.Color) {}
func (nopRenderer) FillTriangle(x0, y0, x1, y1, x2, y2 int, c board.Color) {}
func (nopRenderer) DrawText(x, y int, s string, c board.Color, size int) {}
func (nopRenderer) TextWidth(s string, size int) int { return len(s) * 6 * size }
func (r *nopRenderer) SetBacklight(on bool) { r.backlight = on }

type sample struct {
	x, y int
	down bool
}

// scriptedTouch replays samples, then reports no touch.
type scriptedTouch struct {
	samples []sample
}

func (s *scriptedTouch) Touch() (int, int, bool) {
	if len(s.samples) == 0 {
		return 0, 0, false
	}
	p := s.samples[0]
	s.samples = s.samples[1:]
	return p.x, p.y, p.down
}

// press queues one tap held for hold extra polls.
func (s *scriptedTouch) press(x, y, hold int) {
	for i := 0; i <= hold; i++ {
		s.samples = append(s.samples, sample{x, y, true})
	}
}

type harness struct {
	app    *App
	blobs  *storage.MemoryStore
	in     chan []byte
	out    *bytes.Buffer
	src    *clock.ManualSource
	touch  *scriptedTouch
	sleeps []time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		blobs: storage.NewMemoryStore(),
		in:    make(chan []byte, 16),
		out:   &bytes.Buffer{},
		src:   &clock.ManualSource{},
		touch: &scriptedTouch{},
	}
	h.app = New(Config{
		Store:    tasks.NewStore(h.blobs, nil),
		Clock:    clock.New(h.src),
		Renderer: &nopRenderer{},
		Touch:    h.touch,
		Inbound:  h.in,
		Outbound: h.out,
		Options: Options{
			Sleep: func(d time.Duration) { h.sleeps = append(h.sleeps, d) },
		},
	})
	return h
}

func (h *harness) feed(lines ...string) Status {
	for _, l := range lines {
		h.in <- []byte(l + "\n")
	}
	return h.app.Step()
}

func (h *harness) outLines() []string {
	s := strings.TrimSuffix(h.out.String(), "\n")
	h.out.Reset()
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (h *harness) titles() string {
	var out []string
	for _, t := range h.app.Store().Snapshot() {
		out = append(out, t.Title)
	}
	return strings.Join(out, ",")
}

func TestAddThenDuplicate(t *testing.T) {
	h := newHarness(t)
	add := `{"cmd":"ADD_TASK","title":"Ship v1","month":"Jun","day":5,"time":"3:00 PM","priority":1}`

	st := h.feed(add)
	if st.Lines != 1 || st.Handled != 1 {
		t.Fatalf("status: %+v", st)
	}
	if h.app.Store().Len() != 1 {
		t.Fatalf("size: %d", h.app.Store().Len())
	}
	got, _ := h.app.Store().At(0)
	if !got.Priority || got.Title != "Ship v1" {
		t.Errorf("task: %+v", got)
	}
	if lines := h.outLines(); len(lines) != 0 {
		t.Errorf("insert produced output: %q", lines)
	}

	h.feed(add)
	if h.app.Store().Len() != 1 {
		t.Fatalf("duplicate inserted, size %d", h.app.Store().Len())
	}
	lines := h.outLines()
	if len(lines) != 1 || lines[0] != `{"event":"duplicate_skipped","title":"Ship v1"}` {
		t.Errorf("duplicate notice: %q", lines)
	}
}

func TestDuplicateIgnoresStatusAndNotes(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a","notes":"one","status":"Done"}`)
	h.feed(`{"cmd":"ADD_TASK","title":"a","notes":"two","status":"Paused"}`)
	if h.app.Store().Len() != 1 {
		t.Errorf("size: %d", h.app.Store().Len())
	}
}

func TestMoveTaskFromPC(t *testing.T) {
	h := newHarness(t)
	h.feed(
		`{"cmd":"ADD_TASK","title":"a"}`,
		`{"cmd":"ADD_TASK","title":"b"}`,
		`{"cmd":"ADD_TASK","title":"c"}`,
	)
	h.feed(`{"cmd":"MOVE_TASK","src":0,"dst":2}`)
	if got := h.titles(); got != "b,c,a" {
		t.Errorf("order: %s", got)
	}
	if lines := h.outLines(); len(lines) != 0 {
		t.Errorf("PC move echoed: %q", lines)
	}
}

func TestEditDeleteAndBadIndexes(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a"}`, `{"cmd":"ADD_TASK","title":"b"}`)
	h.feed(
		`{"cmd":"EDIT_TASK","id":1,"status":"Waiting on","notes":"NULL"}`,
		`{"cmd":"EDIT_TASK","id":7,"title":"x"}`,
		`{"cmd":"DELETE_TASK","id":-1}`,
		`{"cmd":"MOVE_TASK","src":0,"dst":9}`,
	)
	b, _ := h.app.Store().At(1)
	if b.Status != tasks.StatusWaitingOn || b.Notes != "" {
		t.Errorf("edit: %+v", b)
	}
	h.feed(`{"cmd":"DELETE_TASK","id":0}`)
	if got := h.titles(); got != "b" {
		t.Errorf("after delete: %s", got)
	}
	h.feed(`{"cmd":"EDIT_TASK","id":0,"status":"NULL"}`)
	b, _ = h.app.Store().At(0)
	if b.Status != tasks.StatusNone {
		t.Errorf("status clear: %q", b.Status)
	}
}

func TestEditOntoAnotherTaskRefused(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"A"}`, `{"cmd":"ADD_TASK","title":"B","notes":"second"}`)
	h.outLines()

	h.feed(`{"cmd":"EDIT_TASK","id":1,"title":"A"}`)
	if got := h.titles(); got != "A,B" {
		t.Errorf("titles: %s", got)
	}
	lines := h.outLines()
	if len(lines) != 1 || lines[0] != `{"event":"duplicate_skipped","title":"A"}` {
		t.Errorf("duplicate notice: %q", lines)
	}

	reloaded := tasks.NewStore(h.blobs, nil)
	if n := reloaded.Load(); n != 2 {
		t.Errorf("reload: %d tasks, want 2", n)
	}
}

func TestClearAllAndListTasksDump(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a","priority":1}`)
	h.feed(`{"cmd":"LIST_TASKS"}`)
	lines := h.outLines()
	want := `{"tasks":[{"title":"a","month":"","day":0,"time":"","priority":1,"status":"","notes":""}]}`
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("dump: %q", lines)
	}

	h.feed(`{"cmd":"CLEAR_ALL"}`)
	if lines := h.outLines(); len(lines) != 1 || lines[0] != `{"tasks":[]}` {
		t.Errorf("clear dump: %q", lines)
	}
	data, err := h.blobs.Get(tasks.BlobKey)
	if err != nil || string(data) != `{"tasks":[]}` {
		t.Errorf("persisted: %s, %v", data, err)
	}
}

func TestMalformedInputIgnoredButWakes(t *testing.T) {
	h := newHarness(t)
	h.app.UI().Sleep()
	st := h.feed("garbage", `{"cmd":"REBOOT"}`, `{"cmd":"DELETE_TASK"}`, `["x"]`)
	if st.Lines != 4 || st.Handled != 0 {
		t.Errorf("status: %+v", st)
	}
	if !h.app.UI().ScreenOn() {
		t.Error("inbound activity did not wake the screen")
	}
	if lines := h.outLines(); len(lines) != 0 {
		t.Errorf("malformed input answered: %q", lines)
	}
}

func TestPartialLinesAcrossSteps(t *testing.T) {
	h := newHarness(t)
	h.in <- []byte(`{"cmd":"ADD_`)
	if st := h.app.Step(); st.Lines != 0 {
		t.Fatalf("partial line parsed: %+v", st)
	}
	h.in <- []byte("TASK\",\"title\":\"a\"}\r\n")
	if st := h.app.Step(); st.Handled != 1 {
		t.Fatalf("completed line not handled: %+v", st)
	}
	if h.app.Store().Len() != 1 {
		t.Errorf("size: %d", h.app.Store().Len())
	}
}

func TestSetTimeAndAutoSleep(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"SET_TIME","hour":16,"minute":55}`)

	slept := 0
	for i := 0; i < 20; i++ {
		h.src.Advance(time.Minute)
		if h.app.Step().Slept {
			slept++
		}
	}
	now, ok := h.app.Clock().Now()
	if !ok || now != 17*60+15 {
		t.Fatalf("now: %s", clock.FormatHHMM(now))
	}
	if slept != 1 {
		t.Errorf("sleep fired %d times, want 1", slept)
	}
	if h.app.UI().ScreenOn() {
		t.Error("screen still on after auto sleep")
	}

	h.touch.press(100, 100, 0)
	h.app.Step()
	if !h.app.UI().ScreenOn() {
		t.Fatal("touch did not wake")
	}
	if h.app.Step().Slept {
		t.Error("sleep fired again without a new anchor")
	}

	// 17:20 UTC
	if !h.feed(`{"cmd":"TIME","epoch":1704129600}`).Slept {
		t.Error("re-anchor past threshold did not re-arm sleep")
	}
}

func TestScreenCommand(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"SCREEN","state":"OFF"}`)
	if h.app.UI().ScreenOn() {
		t.Fatal("SCREEN OFF ignored")
	}
	h.feed(`{"cmd":"SCREEN","state":"ON"}`)
	if !h.app.UI().ScreenOn() {
		t.Fatal("SCREEN ON ignored")
	}
}

func TestTouchNotices(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a"}`, `{"cmd":"ADD_TASK","title":"b"}`, `{"cmd":"ADD_TASK","title":"c"}`)
	h.outLines()

	row := func(r int) int { return board.TopBarHeight + r*board.RowHeight + 10 }

	h.touch.press(30, row(1), 2)
	if !h.app.Step().Touched {
		t.Fatal("touch not reported")
	}
	if h.app.UI().View() != board.StatusView(1) {
		t.Fatalf("view: %+v", h.app.UI().View())
	}
	if len(h.touch.samples) != 0 {
		t.Errorf("release not awaited, %d samples left", len(h.touch.samples))
	}
	if len(h.sleeps) == 0 || h.sleeps[0] != DefaultDebounce {
		t.Errorf("debounce: %v", h.sleeps)
	}

	h.touch.press(100, 100+3*board.StatusOptH+5, 0)
	h.app.Step()
	lines := h.outLines()
	if len(lines) != 1 || lines[0] != `{"cmd":"EDIT_TASK","id":1,"status":"Done"}` {
		t.Errorf("status notice: %q", lines)
	}

	h.touch.press(300, 10, 0)
	h.app.Step()
	h.touch.press(120, row(0), 0)
	h.app.Step()
	h.touch.press(120, row(2), 0)
	h.app.Step()
	if got := h.titles(); got != "b,c,a" {
		t.Errorf("order: %s", got)
	}
	lines = h.outLines()
	if len(lines) != 1 || lines[0] != `{"cmd":"MOVE_TASK","src":0,"dst":2}` {
		t.Errorf("move notice: %q", lines)
	}
}

func TestPCDeleteClosesStatusPopup(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a"}`, `{"cmd":"ADD_TASK","title":"b"}`, `{"cmd":"ADD_TASK","title":"c"}`)
	h.outLines()

	row := func(r int) int { return board.TopBarHeight + r*board.RowHeight + 10 }
	h.touch.press(30, row(1), 0)
	h.app.Step()
	if h.app.UI().View() != board.StatusView(1) {
		t.Fatalf("view: %+v", h.app.UI().View())
	}

	h.feed(`{"cmd":"DELETE_TASK","id":0}`)
	if h.app.UI().View() != board.ListView() {
		t.Fatalf("popup left open after delete: %+v", h.app.UI().View())
	}

	h.touch.press(100, 100+3*board.StatusOptH+5, 0)
	h.app.Step()
	for _, line := range h.outLines() {
		if strings.Contains(line, "EDIT_TASK") {
			t.Errorf("status sent for a shifted task: %s", line)
		}
	}
	c, _ := h.app.Store().At(1)
	if c.Title != "c" || c.Status != tasks.StatusNone {
		t.Errorf("task c: %+v", c)
	}
}

func TestPCMoveClearsSelection(t *testing.T) {
	h := newHarness(t)
	h.feed(`{"cmd":"ADD_TASK","title":"a"}`, `{"cmd":"ADD_TASK","title":"b"}`, `{"cmd":"ADD_TASK","title":"c"}`)
	h.outLines()

	row := func(r int) int { return board.TopBarHeight + r*board.RowHeight + 10 }
	h.touch.press(300, 10, 0)
	h.app.Step()
	h.touch.press(120, row(0), 0)
	h.app.Step()
	if h.app.UI().Selected() != 0 {
		t.Fatalf("selected: %d", h.app.UI().Selected())
	}

	h.feed(`{"cmd":"MOVE_TASK","src":0,"dst":2}`)
	if h.app.UI().Selected() != -1 {
		t.Errorf("selection kept after PC move: %d", h.app.UI().Selected())
	}
	h.touch.press(120, row(1), 0)
	h.app.Step()
	if got := h.titles(); got != "b,c,a" {
		t.Errorf("order: %s", got)
	}
	if lines := h.outLines(); len(lines) != 0 {
		t.Errorf("stale selection moved a task: %q", lines)
	}
}

func TestBootLoadsAndAnnounces(t *testing.T) {
	h := newHarness(t)
	if err := h.blobs.Put(tasks.BlobKey, []byte(`{"tasks":[{"title":"kept","status":"NULL"}]}`)); err != nil {
		t.Fatal(err)
	}
	h.app.Boot()
	if h.titles() != "kept" {
		t.Fatalf("loaded: %s", h.titles())
	}
	lines := h.outLines()
	if len(lines) != 1 || !strings.Contains(lines[0], `"title":"kept"`) {
		t.Errorf("boot dump: %q", lines)
	}
}

func TestTrafficLog(t *testing.T) {
	var buf bytes.Buffer
	in := make(chan []byte, 1)
	app := New(Config{
		Store:    tasks.NewStore(nil, nil),
		Renderer: &nopRenderer{},
		Inbound:  in,
		Options:  Options{Traffic: logging.NewJSONLWriter(&buf), Sleep: func(time.Duration) {}},
	})
	in <- []byte("{\"cmd\":\"LIST_TASKS\"}\nnoise\n")
	app.Step()

	log := buf.String()
	for _, want := range []string{`"dir":"in","line":"{\"cmd\":\"LIST_TASKS\"}"`, `"dir":"out","line":"{\"tasks\":[]}"`, `"note":"ignored"`} {
		if !strings.Contains(log, want) {
			t.Errorf("traffic log missing %s:\n%s", want, log)
		}
	}
}

func TestLinkClosed(t *testing.T) {
	h := newHarness(t)
	close(h.in)
	if !h.app.Step().LinkDown {
		t.Fatal("closed link not reported")
	}
	if h.app.Step().LinkDown {
		t.Error("link down reported twice")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	h.in <- []byte("{\"cmd\":\"ADD_TASK\",\"title\":\"a\"}\n")
	err := h.app.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run: %v", err)
	}
	if h.app.Store().Len() != 1 {
		t.Errorf("Run did not step, size %d", h.app.Store().Len())
	}
}
