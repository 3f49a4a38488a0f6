package scene

import (
	"errors"
	"image"
	"reflect"
	"slices"
	"testing"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
)

func TestCropReplacesImageInPlace(t *testing.T) {
	cropper := &fakeCropper{}
	s := newTestStore(t, WithCropper(cropper))
	addImage(t, s, "x", 0, 0, 10, 10)
	addImage(t, s, "a", 10, 20, 100, 50)
	addImage(t, s, "y", 0, 0, 10, 10)
	ann, err := s.AddAnnotation("a", document.Annotation{Type: document.AnnotationLine, Points: []document.Point{{X: 25, Y: 10}, {X: 30, Y: 12}}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Select("a"); err != nil {
		t.Fatal(err)
	}

	ids, err := s.Crop(engine.Rect{X: 30, Y: 25, Width: 40, Height: 10})
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Crop returned %v", ids)
	}
	if want := image.Rect(20, 5, 60, 15); len(cropper.regions) != 1 || cropper.regions[0] != want {
		t.Fatalf("cropper regions = %v, want %v", cropper.regions, want)
	}

	doc := s.Document()
	img := doc.Images[ids[0]]
	if img.X != 30 || img.Y != 25 || img.Width != 40 || img.Height != 10 {
		t.Errorf("cropped image = (%v,%v %vx%v), want (30,25 40x10)", img.X, img.Y, img.Width, img.Height)
	}
	if img.UncroppedFromID == nil || *img.UncroppedFromID != "a" {
		t.Errorf("uncroppedFromId = %v, want a", img.UncroppedFromID)
	}
	if _, ok := doc.Lineage["a"]; !ok {
		t.Error("no lineage record for a")
	}
	if got := layerIDs(s); !slices.Equal(got, []string{"x", ids[0], "y"}) {
		t.Errorf("layers = %v", got)
	}
	if got := s.Selection().Images; !slices.Equal(got, ids) {
		t.Errorf("selection = %v, want %v", got, ids)
	}
	if p := img.Annotations[0].Points[0]; img.Annotations[0].ID != ann || p.X != 5 || p.Y != 5 {
		t.Errorf("annotation = %+v, want shifted to (5,5)", img.Annotations[0])
	}
}

func TestCropUncropRoundTrip(t *testing.T) {
	s := newTestStore(t)
	orig := document.CanvasImage{ID: "a", BitmapID: "bmp_a", X: 12.5, Y: -40, Scale: 2, Rotation: 30, Width: 120, Height: 80}
	if _, err := s.AddImage(orig); err != nil {
		t.Fatal(err)
	}
	if err := s.Select("a"); err != nil {
		t.Fatal(err)
	}

	rects := []engine.Rect{
		{X: 0, Y: 0, Width: 60, Height: 60},
		{X: 20, Y: 10, Width: 30, Height: 30},
	}
	var last []string
	for _, r := range rects {
		ids, err := s.Crop(r)
		if err != nil {
			t.Fatalf("Crop(%v): %v", r, err)
		}
		last = ids
	}
	if len(s.Document().Lineage) != 2 {
		t.Fatalf("lineage = %v, want two chained records", s.Document().Lineage)
	}

	for range rects {
		if _, err := s.Uncrop(s.Selection().Images); err != nil {
			t.Fatalf("Uncrop: %v", err)
		}
	}
	doc := s.Document()
	got, ok := doc.Images["a"]
	if !ok {
		t.Fatalf("original id not restored; images = %v (last crop %v)", doc.Images, last)
	}
	if got.BitmapID != orig.BitmapID || got.Width != orig.Width || got.Height != orig.Height || got.X != orig.X || got.Y != orig.Y {
		t.Errorf("restored = %+v, want bitmap/size/position of %+v", got, orig)
	}
	if got.UncroppedFromID != nil || len(doc.Lineage) != 0 {
		t.Errorf("lineage not consumed: %v %v", got.UncroppedFromID, doc.Lineage)
	}
	if !slices.Equal(layerIDs(s), []string{"a"}) {
		t.Errorf("layers = %v", layerIDs(s))
	}
}

func TestCropMissesEveryImage(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	if err := s.Select("a"); err != nil {
		t.Fatal(err)
	}
	before := s.Document()

	if _, err := s.Crop(engine.Rect{X: 100, Y: 100, Width: 5, Height: 5}); !errors.Is(err, apperr.ErrEmptyCropArea) {
		t.Fatalf("err = %v, want ErrEmptyCropArea", err)
	}
	if len(s.Document().Lineage) != 0 || len(s.Document().Images) != len(before.Images) {
		t.Error("scene changed after a failed crop")
	}
}

func TestCropSkipsMissedImages(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 100, 0, 10, 10)
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}
	ids, err := s.Crop(engine.Rect{X: 2, Y: 2, Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("cropped %v, want one image", ids)
	}
	if got := s.Selection().Images; !slices.Equal(got, []string{ids[0], "b"}) {
		t.Errorf("selection = %v", got)
	}
}

func TestCropRequiresSelection(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Crop(engine.Rect{Width: 1, Height: 1}); !errors.Is(err, apperr.ErrInvalidSelection) {
		t.Errorf("err = %v, want ErrInvalidSelection", err)
	}
}

func TestUncropWithoutRecordIsNoOp(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	if got, err := s.Uncrop([]string{"a", "missing"}); err != nil || got != apperr.NoOp {
		t.Errorf("Uncrop = %v, %v, want noop", got, err)
	}
}

func TestFailedCropRemovesCutBitmaps(t *testing.T) {
	cropper := &fakeCropper{failOn: "bmp_b"}
	s := newTestStore(t, WithCropper(cropper))
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 0, 0, 10, 10)
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}
	before := s.Document()
	steps := len(s.HistoryLabels())

	if _, err := s.Crop(engine.Rect{X: 2, Y: 2, Width: 4, Height: 4}); err == nil {
		t.Fatal("crop succeeded with a failing cropper")
	}
	if !slices.Equal(cropper.removed, []string{"bmp_a/1"}) {
		t.Errorf("removed = %v, want [bmp_a/1]", cropper.removed)
	}
	if !reflect.DeepEqual(s.Document(), before) || len(s.HistoryLabels()) != steps {
		t.Error("failed crop changed the scene")
	}
	if got := s.Selection().Images; !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("selection = %v", got)
	}
}

func TestUndoRedoCropKeepsSelection(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 100, 100)
	addImage(t, s, "b", 200, 0, 10, 10)
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}
	ids, err := s.Crop(engine.Rect{X: 10, Y: 10, Width: 20, Height: 20})
	if err != nil {
		t.Fatal(err)
	}
	cropped := ids[0]

	steps := []struct {
		name string
		do   func() apperr.Outcome
		want []string
	}{
		{"undo crop", s.Undo, []string{"a", "b"}},
		{"redo crop", s.Redo, []string{cropped, "b"}},
	}
	for _, st := range steps {
		if out := st.do(); out != apperr.Applied {
			t.Fatalf("%s = %v", st.name, out)
		}
		if got := s.Selection().Images; !slices.Equal(got, st.want) {
			t.Errorf("%s: selection = %v, want %v", st.name, got, st.want)
		}
	}

	if _, err := s.Uncrop([]string{cropped}); err != nil {
		t.Fatal(err)
	}
	if got := s.Selection().Images; !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("after uncrop selection = %v", got)
	}
	s.Undo()
	if got := s.Selection().Images; !slices.Equal(got, []string{cropped, "b"}) {
		t.Errorf("undo uncrop: selection = %v", got)
	}
	s.Redo()
	if got := s.Selection().Images; !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("redo uncrop: selection = %v", got)
	}
}
