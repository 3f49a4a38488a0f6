package editor

import (
	"slices"

	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/scene"
)

// DrawCommand is a single drawing operation for the frontend to execute on a
// Canvas2D context. The list is in painter's order (back to front).
type DrawCommand struct {
	Op          string               `json:"op"`                    // "image", "annotation", "outline"
	ObjectID    string               `json:"objectId,omitempty"`    // for hit correlation
	HostID      string               `json:"hostId,omitempty"`      // image holding an annotation
	Transform   []float64            `json:"transform,omitempty"`   // [a, b, c, d, e, f] local to canvas
	BitmapID    string               `json:"bitmapId,omitempty"`    // image and outline ops
	Width       float64              `json:"width,omitempty"`       // intrinsic pixels
	Height      float64              `json:"height,omitempty"`      // intrinsic pixels
	Stroke      string               `json:"stroke,omitempty"`      // outline colour
	StrokeWidth float64              `json:"strokeWidth,omitempty"` // outline width in canvas units
	Opacity     float64              `json:"opacity,omitempty"`
	Annotation  *document.Annotation `json:"annotation,omitempty"` // geometry in the Transform's local space
	Selected    bool                 `json:"selected,omitempty"`
}

const (
	OpImage      = "image"
	OpAnnotation = "annotation"
	OpOutline    = "outline"
)

// Hit is the topmost entity under a canvas point. AnnotationID is set for free
// annotations; ImageID for images (including clicks on their annotations).
type Hit struct {
	ImageID      string `json:"imageId,omitempty"`
	AnnotationID string `json:"annotationId,omitempty"`
}

// view is a scene with gesture previews applied, ready for rendering and
// picking. It never reaches the store.
type view struct {
	sc      *document.Scene
	sel     scene.Selection
	preview map[string]scene.Transform
}

func (v view) frame(img document.CanvasImage) engine.Frame {
	f := engine.FrameOf(img)
	if t, ok := v.preview[img.ID]; ok {
		f.X, f.Y, f.Scale, f.Rotation = t.X, t.Y, t.Scale, t.Rotation
	}
	return f
}

// compile generates the draw command buffer. Each image is followed by its
// annotations and then its outline; free annotations come last.
func (v view) compile() []DrawCommand {
	commands := []DrawCommand{}
	for _, id := range v.sc.ImagesInOrder() {
		img := v.sc.Images[id]
		m := v.frame(img).Matrix().ToSlice()
		selected := slices.Contains(v.sel.Images, id)

		commands = append(commands, DrawCommand{
			Op:        OpImage,
			ObjectID:  id,
			Transform: m,
			BitmapID:  img.BitmapID,
			Width:     img.Width,
			Height:    img.Height,
			Opacity:   1,
			Selected:  selected,
		})
		for _, a := range img.Annotations {
			commands = append(commands, v.annotation(a, id, m))
		}
		if w := img.EffectiveOutlineWidth(); w > 0 {
			commands = append(commands, DrawCommand{
				Op:          OpOutline,
				ObjectID:    id,
				Transform:   m,
				Width:       img.Width,
				Height:      img.Height,
				Stroke:      img.EffectiveOutlineColor(),
				StrokeWidth: w,
				Opacity:     img.EffectiveOutlineOpacity(),
			})
		}
	}
	identity := engine.Identity().ToSlice()
	for _, a := range v.sc.Annotations {
		commands = append(commands, v.annotation(a, "", identity))
	}
	return commands
}

func (v view) annotation(a document.Annotation, hostID string, m []float64) DrawCommand {
	a = a.Clone()
	return DrawCommand{
		Op:         OpAnnotation,
		ObjectID:   a.ID,
		HostID:     hostID,
		Transform:  m,
		Opacity:    a.Stroke.Opacity,
		Annotation: &a,
		Selected:   v.annotationSelected(a.ID),
	}
}

func (v view) annotationSelected(id string) bool {
	for _, ref := range v.sel.Annotations {
		if ref.AnnotationID == id {
			return true
		}
	}
	return false
}

// hitTest returns the topmost entity containing (x, y). Free annotations sit
// above every image and are tested first, front to back.
func (v view) hitTest(x, y float64) (Hit, bool) {
	for i := len(v.sc.Annotations) - 1; i >= 0; i-- {
		a := v.sc.Annotations[i]
		if annotationBounds(a).Contains(x, y) {
			return Hit{AnnotationID: a.ID}, true
		}
	}

	ids := v.sc.ImagesInOrder()
	for i := len(ids) - 1; i >= 0; i-- {
		img := v.sc.Images[ids[i]]
		lx, ly := v.frame(img).Matrix().Invert().TransformPoint(x, y)
		if lx >= 0 && lx <= img.Width && ly >= 0 && ly <= img.Height {
			return Hit{ImageID: img.ID}, true
		}
	}
	return Hit{}, false
}

// selectionBounds returns the combined canvas bounding box of every selected
// image and annotation.
func (v view) selectionBounds() engine.Rect {
	var result engine.Rect
	for _, id := range v.sel.Images {
		img, ok := v.sc.Images[id]
		if !ok {
			continue
		}
		result = result.Union(v.frame(img).Bounds())
	}
	for _, ref := range v.sel.Annotations {
		host, idx, ok := v.sc.FindAnnotation(ref.AnnotationID)
		if !ok {
			continue
		}
		if host == "" {
			result = result.Union(annotationBounds(v.sc.Annotations[idx]))
			continue
		}
		img := v.sc.Images[host]
		local := annotationBounds(img.Annotations[idx])
		result = result.Union(v.frame(img).Matrix().TransformRect(local))
	}
	return result
}

// annotationBounds is the axis-aligned box of an annotation in the space its
// geometry is stored in, padded by half the stroke width.
func annotationBounds(a document.Annotation) engine.Rect {
	var r engine.Rect
	switch {
	case a.Box != nil:
		box := engine.Rect{Width: a.Box.Width, Height: a.Box.Height}
		r = engine.FromTransform(a.Box.X, a.Box.Y, 1, a.Box.Rotation).TransformRect(box)
	case len(a.Points) > 0:
		minX, minY := a.Points[0].X, a.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range a.Points[1:] {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
		r = engine.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	default:
		return engine.Rect{}
	}
	pad := a.Stroke.Width / 2
	return engine.Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}
