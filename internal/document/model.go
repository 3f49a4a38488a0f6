package document

import "math"

// Scene is the canonical value form of a canvas: every entity, the hierarchy and
// the crop lineage. Persistence stores and reloads exactly this struct.
type Scene struct {
	Version     int                    `json:"version"`
	Images      map[string]CanvasImage `json:"images"`
	Groups      map[string]Group       `json:"groups"`
	Layers      []Layer                `json:"layers"`
	Annotations []Annotation           `json:"annotations"` // free canvas, painter's order
	Lineage     map[string]CropRecord  `json:"lineage"`
}

type LayerKind string

const (
	LayerImage LayerKind = "image"
	LayerGroup LayerKind = "group"
)

// Layer is one entry of the top-level ordering. Layers are kept in painter's
// order: index 0 is drawn first (back), the last entry is frontmost.
type Layer struct {
	Kind LayerKind `json:"kind"`
	ID   string    `json:"id"`
}

// Default outline used when an image carries no explicit outline style.
const (
	DefaultOutlineColor   = "#000000"
	DefaultOutlineWidth   = 0.0
	DefaultOutlineOpacity = 1.0
)

type CanvasImage struct {
	ID       string  `json:"id"`
	BitmapID string  `json:"bitmapId"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`

	OutlineColor   *string  `json:"outlineColor"`
	OutlineWidth   *float64 `json:"outlineWidth"`
	OutlineOpacity *float64 `json:"outlineOpacity"`

	CreatedAt       string       `json:"createdAt"`
	Annotations     []Annotation `json:"annotations"`
	UncroppedFromID *string      `json:"uncroppedFromId"`
}

// NormalizedRotation returns the rotation folded into [0, 360) for display.
func (img CanvasImage) NormalizedRotation() float64 {
	r := math.Mod(img.Rotation, 360)
	if r < 0 {
		r += 360
	}
	return r
}

func (img CanvasImage) EffectiveOutlineColor() string {
	if img.OutlineColor == nil {
		return DefaultOutlineColor
	}
	return *img.OutlineColor
}

func (img CanvasImage) EffectiveOutlineWidth() float64 {
	if img.OutlineWidth == nil {
		return DefaultOutlineWidth
	}
	return *img.OutlineWidth
}

func (img CanvasImage) EffectiveOutlineOpacity() float64 {
	if img.OutlineOpacity == nil {
		return DefaultOutlineOpacity
	}
	return *img.OutlineOpacity
}

type AnnotationType string

const (
	AnnotationPath   AnnotationType = "path"
	AnnotationLine   AnnotationType = "line"
	AnnotationArrow  AnnotationType = "arrow"
	AnnotationRect   AnnotationType = "rect"
	AnnotationCircle AnnotationType = "circle"
	AnnotationText   AnnotationType = "text"
)

// HasBox reports whether the type keeps its geometry in a Box rather than Points.
func (t AnnotationType) HasBox() bool {
	return t == AnnotationRect || t == AnnotationCircle || t == AnnotationText
}

func (t AnnotationType) Valid() bool {
	switch t {
	case AnnotationPath, AnnotationLine, AnnotationArrow, AnnotationRect, AnnotationCircle, AnnotationText:
		return true
	}
	return false
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is the geometry of rect, circle and text annotations. (X, Y) is the
// top-left corner; rotation pivots about it.
type Box struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

type Stroke struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

type Paint struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Annotation struct {
	ID     string         `json:"id"`
	Type   AnnotationType `json:"type"`
	Points []Point        `json:"points,omitempty"`
	Box    *Box           `json:"box,omitempty"`

	Stroke     Stroke `json:"stroke"`
	Fill       *Paint `json:"fill,omitempty"`       // rect, circle
	Background *Paint `json:"background,omitempty"` // text

	Text       string  `json:"text,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
}

type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageIDs []string `json:"imageIds"`
	Expanded bool     `json:"expanded"`
}

// CropRecord remembers what an image looked like before a crop. It is keyed in
// Scene.Lineage by the pre-crop image id, which the cropped image carries in
// UncroppedFromID.
type CropRecord struct {
	BitmapID string  `json:"bitmapId"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	// Crop origin in pre-crop local pixels; annotations were shifted by its negation.
	OffsetX         float64 `json:"offsetX"`
	OffsetY         float64 `json:"offsetY"`
	UncroppedFromID *string `json:"uncroppedFromId"`
}

// NewEmptyScene creates a scene with no entities.
func NewEmptyScene() *Scene {
	return &Scene{
		Version:     1,
		Images:      map[string]CanvasImage{},
		Groups:      map[string]Group{},
		Layers:      []Layer{},
		Annotations: []Annotation{},
		Lineage:     map[string]CropRecord{},
	}
}
