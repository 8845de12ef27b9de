package board

// Panel geometry in portrait orientation.
const (
	Width  = 320
	Height = 480

	TopBarHeight = 40
	RowHeight    = 55
	VisibleRows  = 8

	ToggleX      = 240
	ArrowX       = 280
	StatusEndX   = 60
	BodyEndX     = 220
	DetailsEndX  = ArrowX
	ArrowSplitY  = TopBarHeight + (Height-TopBarHeight)/2
	NotesStep    = 20
	NotesLineH   = 12
	StatusOptH   = 50
	charW, charH = 6, 8
)

// Rect is an axis-aligned box. Contains is inclusive of the top-left edge
// and exclusive of the bottom-right one.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

var (
	topBarRect    = Rect{0, 0, Width, TopBarHeight}
	toggleRect    = Rect{ToggleX, 0, Width - ToggleX, TopBarHeight}
	listRect      = Rect{0, TopBarHeight, ArrowX, Height - TopBarHeight}
	arrowUpRect   = Rect{ArrowX, TopBarHeight, Width - ArrowX, ArrowSplitY - TopBarHeight}
	arrowDownRect = Rect{ArrowX, ArrowSplitY, Width - ArrowX, Height - ArrowSplitY}

	popupRect      = Rect{10, 50, 300, 420}
	notesRect      = Rect{20, 110, 240, 290}
	notesUpRect    = Rect{270, 110, 30, 145}
	notesDownRect  = Rect{270, 255, 30, 145}
	closeRect      = Rect{110, 415, 100, 45}
	statusListRect = Rect{30, 100, 260, 6 * StatusOptH}
)

// NotesColumns is the fixed line width of wrapped notes.
const NotesColumns = 240 / charW

// rowRect returns the rectangle of visible row r.
func rowRect(r int) Rect {
	return Rect{0, TopBarHeight + r*RowHeight, ArrowX, RowHeight}
}

// Region names a touchable control in the list view.
type Region int

const (
	RegionNone Region = iota
	RegionToggle
	RegionArrowUp
	RegionArrowDown
	RegionRowStatus
	RegionRowBody
	RegionRowDetails
)

// HitList resolves a list-view touch. For row regions it also returns the
// visible row number.
func HitList(x, y int) (Region, int) {
	switch {
	case toggleRect.Contains(x, y):
		return RegionToggle, 0
	case topBarRect.Contains(x, y):
		return RegionNone, 0
	case arrowUpRect.Contains(x, y):
		return RegionArrowUp, 0
	case arrowDownRect.Contains(x, y):
		return RegionArrowDown, 0
	case !listRect.Contains(x, y):
		return RegionNone, 0
	}
	row := (y - TopBarHeight) / RowHeight
	switch {
	case x < StatusEndX:
		return RegionRowStatus, row
	case x < BodyEndX:
		return RegionRowBody, row
	default:
		return RegionRowDetails, row
	}
}

// statusOption returns the option row under a status popup touch, or -1.
func statusOption(x, y int) int {
	if !statusListRect.Contains(x, y) {
		return -1
	}
	return (y - statusListRect.Y) / StatusOptH
}
