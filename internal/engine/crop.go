package engine

import (
	"image"
	"math"
)

// CropRegion returns the whole-pixel region of f's bitmap covered by the
// canvas-space rect r. The rect is mapped into local space by the inverse
// transform, its bounding box is snapped outward to pixel edges and clipped
// to the bitmap. ok is false when nothing of the bitmap is covered.
func CropRegion(f Frame, r Rect) (region image.Rectangle, ok bool) {
	local := f.Matrix().Invert().TransformRect(r)
	clipped := local.Intersect(Rect{Width: f.Width, Height: f.Height})
	if clipped.IsEmpty() {
		return image.Rectangle{}, false
	}

	region = image.Rect(
		int(math.Floor(clipped.X)),
		int(math.Floor(clipped.Y)),
		int(math.Ceil(clipped.Right())),
		int(math.Ceil(clipped.Bottom())),
	)
	region = region.Intersect(image.Rect(0, 0, int(math.Ceil(f.Width)), int(math.Ceil(f.Height))))
	return region, !region.Empty()
}
