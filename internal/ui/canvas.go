package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskboard-go/internal/board"
)

// Each terminal cell stands for a CellW x CellH block of panel pixels.
// CellW matches the base glyph width so size 1 text maps one rune per cell.
const (
	CellW = 6
	CellH = 16
)

type cell struct {
	ch rune
	fg board.Color
	bg board.Color
}

// Canvas is a board.Renderer that paints onto a grid of terminal cells.
type Canvas struct {
	cols, rows int
	cells      []cell
	backlight  bool
}

var _ board.Renderer = (*Canvas)(nil)

// NewCanvas returns a black canvas covering the whole panel.
func NewCanvas() *Canvas {
	c := &Canvas{
		cols:      (board.Width + CellW - 1) / CellW,
		rows:      (board.Height + CellH - 1) / CellH,
		backlight: true,
	}
	c.cells = make([]cell, c.cols*c.rows)
	c.Clear()
	return c
}

// Cols returns the canvas width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the canvas height in cells.
func (c *Canvas) Rows() int { return c.rows }

// Backlight reports whether the panel is lit.
func (c *Canvas) Backlight() bool { return c.backlight }

// Clear paints every cell black.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
	}
}

// CellCenter returns the panel pixel at the middle of a cell.
func (c *Canvas) CellCenter(col, row int) (x, y int) {
	return col*CellW + CellW/2, row*CellH + CellH/2
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

// FillRect paints the cells whose centers fall inside the rectangle.
func (c *Canvas) FillRect(x, y, w, h int, col board.Color) {
	r := board.Rect{X: x, Y: y, W: w, H: h}
	for row := 0; row < c.rows; row++ {
		for cx := 0; cx < c.cols; cx++ {
			px, py := c.CellCenter(cx, row)
			if r.Contains(px, py) {
				c.cells[row*c.cols+cx] = cell{ch: ' ', fg: col, bg: col}
			}
		}
	}
}

// DrawRect outlines the rectangle with box-drawing runes.
func (c *Canvas) DrawRect(x, y, w, h int, col board.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	left, right := x/CellW, (x+w-1)/CellW
	top, bottom := y/CellH, (y+h-1)/CellH
	for cx := left; cx <= right; cx++ {
		c.stroke(cx, top, '─', col)
		c.stroke(cx, bottom, '─', col)
	}
	for row := top; row <= bottom; row++ {
		c.stroke(left, row, '│', col)
		c.stroke(right, row, '│', col)
	}
	c.stroke(left, top, '┌', col)
	c.stroke(right, top, '┐', col)
	c.stroke(left, bottom, '└', col)
	c.stroke(right, bottom, '┘', col)
}

func (c *Canvas) stroke(col, row int, ch rune, fg board.Color) {
	if p := c.at(col, row); p != nil {
		p.ch = ch
		p.fg = fg
	}
}

// FillTriangle paints the cells whose centers fall inside the triangle.
// A triangle smaller than a cell still marks the cell under its centroid.
func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2 int, col board.Color) {
	hit := false
	for row := 0; row < c.rows; row++ {
		for cx := 0; cx < c.cols; cx++ {
			px, py := c.CellCenter(cx, row)
			if inTriangle(px, py, x0, y0, x1, y1, x2, y2) {
				c.cells[row*c.cols+cx] = cell{ch: ' ', fg: col, bg: col}
				hit = true
			}
		}
	}
	if !hit {
		if p := c.at((x0+x1+x2)/3/CellW, (y0+y1+y2)/3/CellH); p != nil {
			*p = cell{ch: ' ', fg: col, bg: col}
		}
	}
}

func inTriangle(px, py, x0, y0, x1, y1, x2, y2 int) bool {
	d0 := edge(px, py, x0, y0, x1, y1)
	d1 := edge(px, py, x1, y1, x2, y2)
	d2 := edge(px, py, x2, y2, x0, y0)
	neg := d0 < 0 || d1 < 0 || d2 < 0
	pos := d0 > 0 || d1 > 0 || d2 > 0
	return !(neg && pos)
}

func edge(px, py, ax, ay, bx, by int) int {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}

// DrawText writes s on the cell row holding the middle of the glyphs.
// Larger sizes leave the background showing between runes.
func (c *Canvas) DrawText(x, y int, s string, col board.Color, size int) {
	if size < 1 {
		size = 1
	}
	row := (y + 4*size) / CellH
	for i, r := range []rune(s) {
		c.stroke((x+i*CellW*size)/CellW, row, r, col)
	}
}

// TextWidth returns the pixel width of s in the base 6x8 font.
func (c *Canvas) TextWidth(s string, size int) int {
	if size < 1 {
		size = 1
	}
	return len([]rune(s)) * CellW * size
}

// SetBacklight switches the panel light.
func (c *Canvas) SetBacklight(on bool) {
	c.backlight = on
}

// Text returns the canvas runes without colour, one line per cell row.
func (c *Canvas) Text() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		for cx := 0; cx < c.cols; cx++ {
			b.WriteRune(c.cells[row*c.cols+cx].ch)
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render styles the canvas for the terminal. A dark panel renders blank.
func (c *Canvas) Render() string {
	lines := make([]string, c.rows)
	if !c.backlight {
		off := lipgloss.NewStyle().Background(lipgloss.Color("#000000"))
		blank := off.Render(strings.Repeat(" ", c.cols))
		for i := range lines {
			lines[i] = blank
		}
		return strings.Join(lines, "\n")
	}

	for row := 0; row < c.rows; row++ {
		var b strings.Builder
		start := 0
		for cx := 1; cx <= c.cols; cx++ {
			if cx < c.cols && sameStyle(c.cells[row*c.cols+cx], c.cells[row*c.cols+start]) {
				continue
			}
			b.WriteString(c.renderRun(row, start, cx))
			start = cx
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg
}

func (c *Canvas) renderRun(row, from, to int) string {
	first := c.cells[row*c.cols+from]
	runes := make([]rune, 0, to-from)
	for cx := from; cx < to; cx++ {
		runes = append(runes, c.cells[row*c.cols+cx].ch)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(first.fg))).
		Background(lipgloss.Color(hex(first.bg))).
		Render(string(runes))
}

func hex(col board.Color) string {
	r, g, b := col.RGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
