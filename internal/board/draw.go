package board

import (
	"fmt"
	"strings"

	"github.com/nibzard/taskboard-go/internal/tasks"
)

var (
	colorBlack     = RGB(0, 0, 0)
	colorWhite     = RGB(255, 255, 255)
	colorGrey      = RGB(128, 128, 128)
	colorDark      = RGB(40, 40, 40)
	colorBar       = RGB(20, 40, 80)
	colorMove      = RGB(200, 90, 20)
	colorSelect    = RGB(60, 60, 110)
	colorEOD       = RGB(220, 40, 40)
	colorNoStatus  = RGB(64, 64, 64)
	colorPopup     = RGB(24, 24, 24)
	colorPopupEdge = RGB(200, 200, 200)
)

// StatusColor returns the swatch colour for s.
func StatusColor(s tasks.Status) Color {
	switch s {
	case tasks.StatusInProgress:
		return RGB(0x00, 0xFF, 0x00)
	case tasks.StatusPaused:
		return RGB(0xF0, 0xB4, 0x00)
	case tasks.StatusWaitingOn:
		return RGB(0x50, 0xA0, 0xDC)
	case tasks.StatusDone:
		return RGB(0x14, 0x78, 0x3C)
	case tasks.StatusReadyToShip:
		return RGB(0xA0, 0x5A, 0xC8)
	default:
		return colorNoStatus
	}
}

// Redraw repaints the whole screen for the current view.
func (m *Machine) Redraw() {
	if !m.screenOn {
		return
	}
	m.r.FillRect(0, 0, Width, Height, colorBlack)
	m.drawTopBar(true)
	m.drawList()
	switch m.view.Kind {
	case ViewDetails:
		m.drawDetails()
	case ViewStatus:
		m.drawStatus()
	}
}

func (m *Machine) drawTopBar(force bool) bool {
	text := m.TopBarText()
	if !force && text == m.lastBar {
		return false
	}
	if !m.screenOn {
		return false
	}
	m.lastBar = text
	m.r.FillRect(topBarRect.X, topBarRect.Y, topBarRect.W, topBarRect.H, colorBar)
	m.r.DrawText(6, 12, text, colorWhite, 2)

	label, bg := "EDIT", colorBar
	if m.mode == ModeMove {
		label, bg = "MOVE", colorMove
	}
	m.r.FillRect(toggleRect.X, toggleRect.Y, toggleRect.W, toggleRect.H, bg)
	m.r.DrawRect(toggleRect.X, toggleRect.Y, toggleRect.W, toggleRect.H, colorWhite)
	w := m.r.TextWidth(label, 2)
	m.r.DrawText(toggleRect.X+(toggleRect.W-w)/2, 12, label, colorWhite, 2)
	return true
}

func (m *Machine) drawList() {
	if !m.screenOn {
		return
	}
	m.r.FillRect(0, TopBarHeight, Width, Height-TopBarHeight, colorBlack)
	for row := 0; row < VisibleRows; row++ {
		i := m.top + row
		t, ok := m.store.At(i)
		if !ok {
			break
		}
		m.drawRow(row, i, t)
	}
	m.drawArrows()
}

func (m *Machine) drawRow(row, i int, t tasks.Task) {
	r := rowRect(row)
	if i == m.selected {
		m.r.FillRect(r.X, r.Y, r.W, r.H, colorSelect)
	}
	m.r.FillRect(4, r.Y+4, StatusEndX-8, r.H-8, StatusColor(t.Status))
	m.r.DrawRect(r.X, r.Y, r.W, r.H, colorDark)

	titleCols := (BodyEndX - StatusEndX - 8) / (charW * 2)
	m.r.DrawText(StatusEndX+4, r.Y+8, clip(t.Title, titleCols), colorWhite, 2)
	if meta := metaLine(t); meta != "" {
		m.r.DrawText(StatusEndX+4, r.Y+32, clip(meta, (BodyEndX-StatusEndX-8)/charW), colorGrey, 1)
	}
	if t.Priority {
		m.r.FillRect(BodyEndX-10, r.Y+4, 6, r.H-8, colorEOD)
	}
	if m.mode == ModeEdit {
		m.r.DrawText(BodyEndX+18, r.Y+20, "...", colorWhite, 2)
	}
}

func (m *Machine) drawArrows() {
	up, down := colorGrey, colorGrey
	if m.top > 0 {
		up = colorWhite
	}
	if m.top < m.maxTop() {
		down = colorWhite
	}
	cx := ArrowX + (Width-ArrowX)/2
	midUp := arrowUpRect.Y + arrowUpRect.H/2
	midDown := arrowDownRect.Y + arrowDownRect.H/2
	m.r.FillTriangle(cx, midUp-12, cx-12, midUp+12, cx+12, midUp+12, up)
	m.r.FillTriangle(cx, midDown+12, cx-12, midDown-12, cx+12, midDown-12, down)
}

func (m *Machine) drawPopupFrame(title string) {
	p := popupRect
	m.r.FillRect(p.X, p.Y, p.W, p.H, colorPopup)
	m.r.DrawRect(p.X, p.Y, p.W, p.H, colorPopupEdge)
	m.r.DrawText(p.X+10, p.Y+10, clip(title, (p.W-20)/(charW*2)), colorWhite, 2)
}

func (m *Machine) drawDetails() {
	if !m.screenOn {
		return
	}
	t, ok := m.store.At(m.view.Index)
	if !ok {
		return
	}
	m.drawPopupFrame(t.Title)
	meta := metaLine(t)
	if t.Status != tasks.StatusNone {
		meta = strings.TrimSpace(meta + "  " + string(t.Status))
	}
	m.r.DrawText(popupRect.X+10, popupRect.Y+36, clip(meta, (popupRect.W-20)/charW), colorGrey, 1)

	m.r.FillTriangle(notesUpRect.X+15, notesUpRect.Y+50, notesUpRect.X+3, notesUpRect.Y+74, notesUpRect.X+27, notesUpRect.Y+74, colorWhite)
	m.r.FillTriangle(notesDownRect.X+15, notesDownRect.Y+94, notesDownRect.X+3, notesDownRect.Y+70, notesDownRect.X+27, notesDownRect.Y+70, colorWhite)

	m.r.DrawRect(closeRect.X, closeRect.Y, closeRect.W, closeRect.H, colorWhite)
	w := m.r.TextWidth("Close", 2)
	m.r.DrawText(closeRect.X+(closeRect.W-w)/2, closeRect.Y+14, "Close", colorWhite, 2)
	m.drawNotes()
}

func (m *Machine) drawNotes() {
	if !m.screenOn {
		return
	}
	t, ok := m.store.At(m.view.Index)
	if !ok {
		return
	}
	n := notesRect
	m.r.FillRect(n.X, n.Y, n.W, n.H, colorPopup)
	for i, line := range WrapNotes(t.Notes, NotesColumns) {
		y := n.Y + i*NotesLineH - m.notesScroll
		if y < n.Y {
			continue
		}
		if y+charH > n.Y+n.H {
			break
		}
		m.r.DrawText(n.X, y, line, colorWhite, 1)
	}
}

func (m *Machine) drawStatus() {
	if !m.screenOn {
		return
	}
	m.drawPopupFrame("Set status")
	for i, s := range StatusOptions() {
		y := statusListRect.Y + i*StatusOptH
		label := string(s)
		if s == tasks.StatusNone {
			label = "Clear"
		}
		m.r.FillRect(statusListRect.X, y+4, 30, StatusOptH-8, StatusColor(s))
		m.r.DrawRect(statusListRect.X, y, statusListRect.W, StatusOptH, colorDark)
		m.r.DrawText(statusListRect.X+40, y+17, label, colorWhite, 2)
	}
}

// metaLine renders the date, time and end-of-day marker of t.
func metaLine(t tasks.Task) string {
	var parts []string
	if t.HasDate() {
		parts = append(parts, fmt.Sprintf("%s %d", t.Month, t.Day))
	}
	if t.Time != "" {
		parts = append(parts, t.Time)
	}
	if t.Priority {
		parts = append(parts, "EOD")
	}
	return strings.Join(parts, " | ")
}

func clip(s string, cols int) string {
	r := []rune(s)
	if cols <= 0 || len(r) <= cols {
		return s
	}
	if cols <= 2 {
		return string(r[:cols])
	}
	return string(r[:cols-2]) + ".."
}
