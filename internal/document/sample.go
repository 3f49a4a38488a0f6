package document

import (
	"time"

	"github.com/inamate/pinboard/internal/typeid"
)

// NewSampleScene builds a small scene for the playground: two loose images,
// a group of two, a free arrow and annotations on one of the images. Bitmap
// ids are placeholders the renderer draws as checkerboards.
func NewSampleScene() *Scene {
	now := time.Now().UTC().Format(time.RFC3339)
	sc := NewEmptyScene()

	red := "#e94560"
	width := 4.0

	mk := func(name string, x, y, w, h, rot float64) CanvasImage {
		id := typeid.NewImageID()
		img := CanvasImage{
			ID:        id,
			BitmapID:  typeid.NewBitmapID(),
			Name:      name,
			X:         x,
			Y:         y,
			Scale:     1,
			Rotation:  rot,
			Width:     w,
			Height:    h,
			CreatedAt: now,
		}
		sc.Images[id] = img
		return img
	}

	photo := mk("Photo", 80, 80, 640, 480, 0)
	photo.OutlineColor = &red
	photo.OutlineWidth = &width
	photo.Annotations = []Annotation{
		{
			ID:     typeid.NewAnnotationID(),
			Type:   AnnotationRect,
			Box:    &Box{X: 120, Y: 90, Width: 200, Height: 140},
			Stroke: Stroke{Color: "#ffd166", Width: 3, Opacity: 1},
			Fill:   &Paint{Color: "#ffd166", Opacity: 0.2},
		},
		{
			ID:         typeid.NewAnnotationID(),
			Type:       AnnotationText,
			Box:        &Box{X: 120, Y: 240, Width: 220, Height: 40},
			Stroke:     Stroke{Color: "#ffffff", Width: 0, Opacity: 1},
			Background: &Paint{Color: "#000000", Opacity: 0.6},
			Text:       "Look here",
			FontFamily: "Inter",
			FontSize:   24,
		},
	}
	sc.Images[photo.ID] = photo

	screenshot := mk("Screenshot", 800, 120, 400, 300, 12)
	left := mk("Detail A", 120, 640, 240, 180, 0)
	right := mk("Detail B", 400, 640, 240, 180, 0)

	groupID := typeid.NewGroupID()
	sc.Groups[groupID] = Group{
		ID:       groupID,
		Name:     "Group 1",
		ImageIDs: []string{left.ID, right.ID},
		Expanded: true,
	}

	sc.Layers = []Layer{
		{Kind: LayerImage, ID: photo.ID},
		{Kind: LayerGroup, ID: groupID},
		{Kind: LayerImage, ID: screenshot.ID},
	}

	sc.Annotations = []Annotation{
		{
			ID:     typeid.NewAnnotationID(),
			Type:   AnnotationArrow,
			Points: []Point{{X: 760, Y: 520}, {X: 880, Y: 430}},
			Stroke: Stroke{Color: "#53d769", Width: 6, Opacity: 1},
		},
	}
	sc.Normalize()
	return sc
}
