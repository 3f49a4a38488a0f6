package engine

import (
	"math"

	"github.com/inamate/pinboard/internal/document"
)

// epsilon is the relative size below which a computed move or rescale is
// treated as no change, so that repeating a layout operation leaves positions
// bit-identical.
const epsilon = 1e-9

// Frame is the transform state of one image as seen by the layout functions.
type Frame struct {
	ID       string
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
	Width    float64 // intrinsic
	Height   float64 // intrinsic
}

// FrameOf extracts the transform state of an image.
func FrameOf(img document.CanvasImage) Frame {
	return Frame{
		ID:       img.ID,
		X:        img.X,
		Y:        img.Y,
		Scale:    img.Scale,
		Rotation: img.Rotation,
		Width:    img.Width,
		Height:   img.Height,
	}
}

// ApplyTo copies the frame's position and scale back onto an image.
func (f Frame) ApplyTo(img *document.CanvasImage) {
	img.X = f.X
	img.Y = f.Y
	img.Scale = f.Scale
	img.Rotation = f.Rotation
}

// Matrix maps local pixel coordinates to canvas coordinates.
func (f Frame) Matrix() Matrix2D {
	return FromTransform(f.X, f.Y, f.Scale, f.Rotation)
}

// Bounds returns the axis-aligned bounding box of the transformed image.
func (f Frame) Bounds() Rect {
	return f.Matrix().TransformRect(Rect{Width: f.Width, Height: f.Height})
}

// ImageBounds is Bounds for a document image.
func ImageBounds(img document.CanvasImage) Rect {
	return FrameOf(img).Bounds()
}

func (f Frame) moveBy(dx, dy float64) Frame {
	if !negligible(dx, f.X) {
		f.X += dx
	}
	if !negligible(dy, f.Y) {
		f.Y += dy
	}
	return f
}

// negligible reports whether moving coord by delta is rounding noise.
func negligible(delta, coord float64) bool {
	return math.Abs(delta) <= epsilon*max(1, math.Abs(coord), math.Abs(coord+delta))
}

// UnionBounds returns the combined bounding box of all frames.
func UnionBounds(frames []Frame) Rect {
	var u Rect
	for i, f := range frames {
		if i == 0 {
			u = f.Bounds()
			continue
		}
		u = u.Union(f.Bounds())
	}
	return u
}
