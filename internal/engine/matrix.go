package engine

import "math"

// Matrix2D is an affine transform stored in Canvas2D setTransform order
// [a, b, c, d, e, f]: x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix2D [6]float64

func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// FromTransform maps an image's local pixel space onto the canvas: scale by s,
// rotate by rDegrees about the local origin, then move the origin to (x, y).
func FromTransform(x, y, s, rDegrees float64) Matrix2D {
	rad := rDegrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	return Matrix2D{cos * s, sin * s, -sin * s, cos * s, x, y}
}

func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect maps the four corners of r and returns their axis-aligned
// bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	corners := [4][2]float64{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := m.TransformPoint(c[0], c[1])
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Invert returns the inverse transform. A singular matrix inverts to the
// identity; image matrices have scale > 0 and never are.
func (m Matrix2D) Invert() Matrix2D {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Identity()
	}
	return Matrix2D{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}
}

// ToSlice returns the six coefficients for setTransform.
func (m Matrix2D) ToSlice() []float64 {
	return m[:]
}
