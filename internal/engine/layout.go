package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/inamate/pinboard/internal/apperr"
)

// ArrangeSpacing is the gap between grid cells in canvas units.
const ArrangeSpacing = 20.0

type AlignMode string

const (
	AlignLeft    AlignMode = "left"
	AlignHCenter AlignMode = "h-center"
	AlignRight   AlignMode = "right"
	AlignTop     AlignMode = "top"
	AlignVCenter AlignMode = "v-center"
	AlignBottom  AlignMode = "bottom"
)

type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Order selects whether arrange and stack walk the selection front to back or
// back to front. Callers decide; nothing here infers it from call timing.
type Order string

const (
	OrderNormal  Order = "normal"
	OrderReverse Order = "reverse"
)

type Dimension string

const (
	DimensionWidth  Dimension = "width"
	DimensionHeight Dimension = "height"
)

func (m AlignMode) Valid() bool {
	switch m {
	case AlignLeft, AlignHCenter, AlignRight, AlignTop, AlignVCenter, AlignBottom:
		return true
	}
	return false
}

func (d Direction) Valid() bool { return d == Horizontal || d == Vertical }
func (o Order) Valid() bool     { return o == OrderNormal || o == OrderReverse }
func (d Dimension) Valid() bool { return d == DimensionWidth || d == DimensionHeight }

func requireFrames(op string, frames []Frame, n int) error {
	if len(frames) < n {
		return fmt.Errorf("%s: need at least %d images, got %d: %w", op, n, len(frames), apperr.ErrInvalidSelection)
	}
	return nil
}

// Align moves every frame so that its bounding-box edge or center matches the
// corresponding edge or center of the selection's combined bounding box. The
// orthogonal axis and sizes are untouched.
func Align(frames []Frame, mode AlignMode) ([]Frame, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("align: unknown mode %q: %w", mode, apperr.ErrInvalidValue)
	}
	if err := requireFrames("align", frames, 2); err != nil {
		return nil, err
	}

	u := UnionBounds(frames)
	ucx, ucy := u.Center()

	out := make([]Frame, len(frames))
	for i, f := range frames {
		b := f.Bounds()
		cx, cy := b.Center()
		var dx, dy float64
		switch mode {
		case AlignLeft:
			dx = u.X - b.X
		case AlignHCenter:
			dx = ucx - cx
		case AlignRight:
			dx = u.Right() - b.Right()
		case AlignTop:
			dy = u.Y - b.Y
		case AlignVCenter:
			dy = ucy - cy
		case AlignBottom:
			dy = u.Bottom() - b.Bottom()
		}
		out[i] = f.moveBy(dx, dy)
	}
	return out, nil
}

// iteration returns the indexes of frames in the requested walk order.
func iteration(n int, order Order) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if order == OrderReverse {
		slices.Reverse(idx)
	}
	return idx
}

func checkLayoutArgs(op string, dir Direction, order Order) error {
	if !dir.Valid() {
		return fmt.Errorf("%s: unknown direction %q: %w", op, dir, apperr.ErrInvalidValue)
	}
	if !order.Valid() {
		return fmt.Errorf("%s: unknown order %q: %w", op, order, apperr.ErrInvalidValue)
	}
	return nil
}

// Arrange lays the frames out on a uniform grid anchored at the selection's
// top-left corner. Cells are as large as the largest bounding box; the primary
// axis fills first (rows for horizontal, columns for vertical) and wraps after
// ceil(sqrt(n)) cells.
func Arrange(frames []Frame, dir Direction, order Order) ([]Frame, error) {
	if err := checkLayoutArgs("arrange", dir, order); err != nil {
		return nil, err
	}
	if err := requireFrames("arrange", frames, 2); err != nil {
		return nil, err
	}

	u := UnionBounds(frames)
	var cellW, cellH float64
	for _, f := range frames {
		b := f.Bounds()
		cellW = max(cellW, b.Width)
		cellH = max(cellH, b.Height)
	}
	perLine := int(math.Ceil(math.Sqrt(float64(len(frames)))))

	out := make([]Frame, len(frames))
	for slot, i := range iteration(len(frames), order) {
		col, row := slot%perLine, slot/perLine
		if dir == Vertical {
			col, row = slot/perLine, slot%perLine
		}
		cellX := u.X + float64(col)*(cellW+ArrangeSpacing)
		cellY := u.Y + float64(row)*(cellH+ArrangeSpacing)
		b := frames[i].Bounds()
		out[i] = frames[i].moveBy(cellX-b.X, cellY-b.Y)
	}
	return out, nil
}

// Stack places the frames edge to edge along dir, starting at the selection's
// leading edge, with their centers aligned on the orthogonal axis.
func Stack(frames []Frame, dir Direction, order Order) ([]Frame, error) {
	if err := checkLayoutArgs("stack", dir, order); err != nil {
		return nil, err
	}
	if err := requireFrames("stack", frames, 2); err != nil {
		return nil, err
	}

	u := UnionBounds(frames)
	ucx, ucy := u.Center()
	cursor := u.X
	if dir == Vertical {
		cursor = u.Y
	}

	out := make([]Frame, len(frames))
	for _, i := range iteration(len(frames), order) {
		b := frames[i].Bounds()
		cx, cy := b.Center()
		if dir == Horizontal {
			out[i] = frames[i].moveBy(cursor-b.X, ucy-cy)
			cursor += b.Width
		} else {
			out[i] = frames[i].moveBy(ucx-cx, cursor-b.Y)
			cursor += b.Height
		}
	}
	return out, nil
}

// Distribute keeps the two extreme frames (by center along dir) in place and
// spaces the centers of the others evenly between them. Frames are ranked by
// current center position; ties keep selection order.
func Distribute(frames []Frame, dir Direction) ([]Frame, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("distribute: unknown direction %q: %w", dir, apperr.ErrInvalidValue)
	}
	if err := requireFrames("distribute", frames, 3); err != nil {
		return nil, err
	}

	center := func(f Frame) float64 {
		cx, cy := f.Bounds().Center()
		if dir == Horizontal {
			return cx
		}
		return cy
	}

	ranked := iteration(len(frames), OrderNormal)
	slices.SortStableFunc(ranked, func(a, b int) int {
		ca, cb := center(frames[a]), center(frames[b])
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return 0
	})

	first := center(frames[ranked[0]])
	last := center(frames[ranked[len(ranked)-1]])
	step := (last - first) / float64(len(ranked)-1)

	out := slices.Clone(frames)
	for pos := 1; pos < len(ranked)-1; pos++ {
		i := ranked[pos]
		delta := first + float64(pos)*step - center(frames[i])
		if dir == Horizontal {
			out[i] = frames[i].moveBy(delta, 0)
		} else {
			out[i] = frames[i].moveBy(0, delta)
		}
	}
	return out, nil
}

// MatchSize rescales every frame so its bounding-box width or height equals
// that of the first frame. Only scale changes, so aspect ratio is preserved;
// each frame keeps its current center.
func MatchSize(frames []Frame, dim Dimension) ([]Frame, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("match size: unknown dimension %q: %w", dim, apperr.ErrInvalidValue)
	}
	if err := requireFrames("match size", frames, 2); err != nil {
		return nil, err
	}

	size := func(r Rect) float64 {
		if dim == DimensionWidth {
			return r.Width
		}
		return r.Height
	}
	target := size(frames[0].Bounds())

	out := slices.Clone(frames)
	for i := 1; i < len(frames); i++ {
		f := frames[i]
		b := f.Bounds()
		current := size(b)
		if current <= 0 || math.Abs(target/current-1) <= epsilon {
			continue
		}
		cx, cy := b.Center()
		f.Scale *= target / current
		ncx, ncy := f.Bounds().Center()
		f.X += cx - ncx
		f.Y += cy - ncy
		out[i] = f
	}
	return out, nil
}
