// Package editor is the in-browser facade over a scene.Store. It owns the
// bitmap library, answers render and picking queries, and keeps the preview
// of an in-progress drag, resize or rotate gesture out of the undo history
// until the pointer is released.
package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"maps"
	"slices"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/bitmap"
	"github.com/inamate/pinboard/internal/command"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/scene"
)

var ErrNoGesture = errors.New("no gesture in progress")

// Editor processes commands from the frontend and returns query results.
type Editor struct {
	store   *scene.Store
	library *bitmap.Library

	// Gesture state: placements at gesture start and the live preview.
	base    map[string]scene.Transform
	preview map[string]scene.Transform
}

// New creates an editor with an empty scene and an in-memory bitmap library
// that also serves crops.
func New(opts ...scene.Option) (*Editor, error) {
	library, err := bitmap.NewLibrary("")
	if err != nil {
		return nil, err
	}
	opts = append([]scene.Option{scene.WithCropper(library)}, opts...)
	return &Editor{
		store:   scene.New(opts...),
		library: library,
	}, nil
}

func (e *Editor) Store() *scene.Store { return e.store }

// --- Commands (frontend → editor) ---

// LoadScene replaces the scene with a JSON document.
func (e *Editor) LoadScene(data []byte) error {
	sc := document.NewEmptyScene()
	if err := json.Unmarshal(data, sc); err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}
	e.CancelGesture()
	return e.store.Load(sc)
}

// LoadSampleScene loads the built-in sample scene.
func (e *Editor) LoadSampleScene() error {
	e.CancelGesture()
	return e.store.Load(document.NewSampleScene())
}

// Apply decodes and runs one operation, returning its JSON result. Any
// gesture in progress is abandoned.
func (e *Editor) Apply(data []byte) ([]byte, error) {
	op, err := command.Decode(data)
	if err != nil {
		return nil, err
	}
	e.CancelGesture()
	res, err := command.Apply(e.store, op)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// BitmapInfo describes a bitmap added to the library.
type BitmapInfo struct {
	BitmapID string `json:"bitmapId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// AddBitmap decodes an encoded image and stores it. The caller follows up with
// an image.add operation referencing the returned id.
func (e *Editor) AddBitmap(data []byte) (BitmapInfo, error) {
	id, img, err := e.library.Decode(bytes.NewReader(data))
	if err != nil {
		return BitmapInfo{}, err
	}
	b := img.Bounds()
	return BitmapInfo{BitmapID: id, Width: b.Dx(), Height: b.Dy()}, nil
}

// BitmapPNG returns a stored bitmap encoded as PNG.
func (e *Editor) BitmapPNG(id string) ([]byte, error) {
	img, err := e.library.Get(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode bitmap: %w", err)
	}
	return buf.Bytes(), nil
}

// BeginGesture starts previewing new placements for the given images.
func (e *Editor) BeginGesture(imageIDs ...string) error {
	if len(imageIDs) == 0 {
		return fmt.Errorf("begin gesture: %w", apperr.ErrInvalidSelection)
	}
	sc := e.store.Document()
	base := make(map[string]scene.Transform, len(imageIDs))
	for _, id := range imageIDs {
		img, ok := sc.Images[id]
		if !ok {
			return fmt.Errorf("image %s: %w", id, apperr.ErrEntityNotFound)
		}
		base[id] = scene.Transform{X: img.X, Y: img.Y, Scale: img.Scale, Rotation: img.Rotation}
	}
	e.base = base
	e.preview = maps.Clone(base)
	return nil
}

// PreviewMove offsets every gesture image from its starting placement.
func (e *Editor) PreviewMove(dx, dy float64) error {
	if e.base == nil {
		return ErrNoGesture
	}
	for id, t := range e.base {
		t.X += dx
		t.Y += dy
		e.preview[id] = t
	}
	return nil
}

// PreviewTransform sets the full preview placement of one gesture image.
func (e *Editor) PreviewTransform(imageID string, t scene.Transform) error {
	if e.base == nil {
		return ErrNoGesture
	}
	if _, ok := e.base[imageID]; !ok {
		return fmt.Errorf("image %s not in gesture: %w", imageID, apperr.ErrInvalidSelection)
	}
	if t.Scale <= 0 {
		return fmt.Errorf("preview scale %v: %w", t.Scale, apperr.ErrInvalidValue)
	}
	e.preview[imageID] = t
	return nil
}

// CommitGesture writes the previewed placements to the store as one undo step
// and ends the gesture.
func (e *Editor) CommitGesture() (apperr.Outcome, error) {
	if e.base == nil {
		return apperr.NoOp, ErrNoGesture
	}
	preview := e.preview
	e.CancelGesture()
	return e.store.SetImageTransforms(preview)
}

// CancelGesture drops the preview without touching the store.
func (e *Editor) CancelGesture() {
	e.base = nil
	e.preview = nil
}

// GestureImages returns the ids being previewed, sorted.
func (e *Editor) GestureImages() []string {
	return slices.Sorted(maps.Keys(e.base))
}

// --- Queries (frontend ← editor) ---

func (e *Editor) view() view {
	return view{
		sc:      e.store.Document(),
		sel:     e.store.Selection(),
		preview: e.preview,
	}
}

// Render returns the draw command list for the current scene and preview.
func (e *Editor) Render() []DrawCommand {
	return e.view().compile()
}

// RenderJSON is Render serialized for the frontend.
func (e *Editor) RenderJSON() string {
	data, err := json.Marshal(e.Render())
	if err != nil {
		return "[]"
	}
	return string(data)
}

// HitTest returns the topmost entity at a canvas point.
func (e *Editor) HitTest(x, y float64) (Hit, bool) {
	return e.view().hitTest(x, y)
}

// SelectionBounds returns the combined canvas bounding box of the selection,
// or an empty rect when nothing is selected.
func (e *Editor) SelectionBounds() engine.Rect {
	return e.view().selectionBounds()
}

// SnapshotJSON returns the store snapshot as JSON.
func (e *Editor) SnapshotJSON() (string, error) {
	data, err := json.Marshal(e.store.Snapshot())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DocumentJSON returns the canonical scene document as JSON.
func (e *Editor) DocumentJSON() (string, error) {
	data, err := json.Marshal(e.store.Document())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
