// Package board is the touch-driven UI of the task board: the view state
// machine, screen layout, hit testing and drawing.
//
// The machine never draws while the screen is off and never touches the
// task list except through tasks.Store, so every mutation it makes is
// persisted before control returns to the caller. Changes the PC must
// mirror come back from HandleTouch as a Notice.
package board

import (
	"github.com/nibzard/taskboard-go/internal/tasks"
)

// Color is a 16-bit RGB565 pixel value.
type Color uint16

// RGB packs 8-bit channels into RGB565.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGB8 unpacks c into 8-bit channels.
func (c Color) RGB8() (r, g, b uint8) {
	r5 := uint8(c >> 11 & 0x1F)
	g6 := uint8(c >> 5 & 0x3F)
	b5 := uint8(c & 0x1F)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Renderer draws primitives on the panel. Coordinates are pixels with the
// origin at the top-left corner.
type Renderer interface {
	FillRect(x, y, w, h int, c Color)
	DrawRect(x, y, w, h int, c Color)
	FillTriangle(x0, y0, x1, y1, x2, y2 int, c Color)
	// DrawText draws s with its top-left corner at x, y. Size scales the
	// base 6x8 font.
	DrawText(x, y int, s string, c Color, size int)
	TextWidth(s string, size int) int
	SetBacklight(on bool)
}

// TouchSource yields calibrated touch samples.
type TouchSource interface {
	// Touch returns the current contact point, or false when nothing is
	// touching the panel.
	Touch() (x, y int, ok bool)
}

// ViewKind selects which screen is showing.
type ViewKind int

const (
	ViewList ViewKind = iota
	ViewDetails
	ViewStatus
)

func (k ViewKind) String() string {
	switch k {
	case ViewDetails:
		return "details"
	case ViewStatus:
		return "status"
	default:
		return "list"
	}
}

// View is the current screen. Index names the task a popup is open for
// and is meaningless in the list view.
type View struct {
	Kind  ViewKind
	Index int
}

// ListView returns the task list view.
func ListView() View { return View{Kind: ViewList} }

// DetailsView returns the details popup for task i.
func DetailsView(i int) View { return View{Kind: ViewDetails, Index: i} }

// StatusView returns the status picker for task i.
func StatusView(i int) View { return View{Kind: ViewStatus, Index: i} }

// Popup reports whether a popup is open.
func (v View) Popup() bool { return v.Kind != ViewList }

// Mode selects how row taps are interpreted.
type Mode int

const (
	ModeEdit Mode = iota
	ModeMove
)

func (m Mode) String() string {
	if m == ModeMove {
		return "move"
	}
	return "edit"
}

// NoticeKind classifies a change the PC should mirror.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeMove
	NoticeStatus
)

// Notice is an on-device change to report over the link.
type Notice struct {
	Kind   NoticeKind
	Src    int
	Dst    int
	ID     int
	Status tasks.Status
}
