package scene

import (
	"errors"
	"fmt"
	"image"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/selection"
)

type fakeCropper struct {
	regions []image.Rectangle
	failOn  string
	removed []string
}

func (c *fakeCropper) Crop(bitmapID string, r image.Rectangle) (string, error) {
	if bitmapID == c.failOn {
		return "", errors.New("decode failed")
	}
	c.regions = append(c.regions, r)
	return fmt.Sprintf("%s/%d", bitmapID, len(c.regions)), nil
}

func (c *fakeCropper) Remove(bitmapID string) error {
	c.removed = append(c.removed, bitmapID)
	return nil
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	n := 0
	base := []Option{
		WithIDGenerator(func(prefix string) string {
			n++
			return fmt.Sprintf("%s_%d", prefix, n)
		}),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
		WithCropper(&fakeCropper{}),
	}
	return New(append(base, opts...)...)
}

func addImage(t *testing.T, s *Store, id string, x, y, w, h float64) {
	t.Helper()
	if _, err := s.AddImage(document.CanvasImage{ID: id, BitmapID: "bmp_" + id, X: x, Y: y, Width: w, Height: h}); err != nil {
		t.Fatalf("AddImage(%s): %v", id, err)
	}
}

func layerIDs(s *Store) []string {
	var ids []string
	for _, l := range s.Document().Layers {
		ids = append(ids, l.ID)
	}
	return ids
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUndoRedoRestoresSnapshotsExactly(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 40, 40)
	addImage(t, s, "b", 50, 10, 40, 60)
	addImage(t, s, "c", 200, 30, 10, 10)
	if err := s.Select("a", "b", "c"); err != nil {
		t.Fatal(err)
	}

	ops := []struct {
		name string
		run  func() error
	}{
		{"align", func() error { _, err := s.Align(engine.AlignBottom); return err }},
		{"arrange", func() error { _, err := s.Arrange(engine.Vertical, engine.OrderReverse); return err }},
		{"match", func() error { _, err := s.MatchSize(engine.DimensionHeight); return err }},
		{"group", func() error { _, err := s.CreateGroup([]string{"a", "c"}); return err }},
		{"rename", func() error { _, err := s.RenameImage("b", "Bee"); return err }},
		{"write back", func() error {
			_, err := s.WriteBack(map[selection.Key]selection.Value{selection.KeyOutlineColor: "#ff0000"})
			return err
		}},
	}
	for _, op := range ops {
		before := s.Document()
		if err := op.run(); err != nil {
			t.Fatalf("%s: %v", op.name, err)
		}
		after := s.Document()
		if reflect.DeepEqual(before, after) {
			t.Fatalf("%s changed nothing", op.name)
		}

		if got := s.Undo(); got != apperr.Applied {
			t.Fatalf("%s: Undo = %v", op.name, got)
		}
		if !reflect.DeepEqual(s.Document(), before) {
			t.Errorf("%s: undo did not restore the prior scene", op.name)
		}
		if got := s.Redo(); got != apperr.Applied {
			t.Fatalf("%s: Redo = %v", op.name, got)
		}
		if !reflect.DeepEqual(s.Document(), after) {
			t.Errorf("%s: redo did not reapply the change", op.name)
		}
	}
}

func TestUndoRedoAtEndsAreNoOps(t *testing.T) {
	s := newTestStore(t)
	if got := s.Undo(); got != apperr.NoOp {
		t.Errorf("Undo on empty history = %v, want noop", got)
	}
	addImage(t, s, "a", 0, 0, 10, 10)
	if got := s.Redo(); got != apperr.NoOp {
		t.Errorf("Redo at end = %v, want noop", got)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Errorf("CanUndo=%v CanRedo=%v, want true false", s.CanUndo(), s.CanRedo())
	}
}

func TestNewCommandDiscardsRedoTail(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 0, 0, 10, 10)
	s.Undo()
	addImage(t, s, "c", 0, 0, 10, 10)

	if s.CanRedo() {
		t.Error("redo should be gone after a new command")
	}
	if got := s.HistoryLabels(); len(got) != 2 {
		t.Errorf("history = %v, want 2 entries", got)
	}
	if _, ok := s.Document().Images["b"]; ok {
		t.Error("undone image came back")
	}
}

func TestFailedOperationRecordsNothing(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 40, 40)
	addImage(t, s, "b", 50, 0, 40, 40)
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}
	before := s.Document()
	labels := s.HistoryLabels()

	_, err := s.Distribute(engine.Horizontal)
	if !errors.Is(err, apperr.ErrInvalidSelection) {
		t.Fatalf("Distribute with 2 images err = %v, want ErrInvalidSelection", err)
	}
	if !reflect.DeepEqual(s.Document(), before) {
		t.Error("positions changed after a rejected distribute")
	}
	if !slices.Equal(s.HistoryLabels(), labels) {
		t.Errorf("history changed: %v", s.HistoryLabels())
	}
}

func TestDistributeThroughStore(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 40, 40)
	addImage(t, s, "b", 50, 0, 40, 40)
	addImage(t, s, "c", 200, 0, 40, 40)
	if err := s.Select("c", "a", "b"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Distribute(engine.Horizontal)
	if err != nil || got != apperr.Applied {
		t.Fatalf("Distribute = %v, %v", got, err)
	}
	doc := s.Document()
	if doc.Images["a"].X != 0 || doc.Images["c"].X != 200 {
		t.Errorf("extremes moved: a=%v c=%v", doc.Images["a"].X, doc.Images["c"].X)
	}
	if !near(doc.Images["b"].X, 100) {
		t.Errorf("b.X = %v, want 100 (center midway at 120)", doc.Images["b"].X)
	}
}

func TestAlignTwiceIsNoOp(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 13, 7, 40, 40)
	addImage(t, s, "b", 50, 21, 30, 10)
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Align(engine.AlignVCenter); err != nil || got != apperr.Applied {
		t.Fatalf("first Align = %v, %v", got, err)
	}
	n := len(s.HistoryLabels())
	if got, err := s.Align(engine.AlignVCenter); err != nil || got != apperr.NoOp {
		t.Fatalf("second Align = %v, %v, want noop", got, err)
	}
	if len(s.HistoryLabels()) != n {
		t.Error("no-op align was recorded")
	}
}

func TestReparentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddImage(document.CanvasImage{ID: "a", BitmapID: "bmp_a", X: 100, Y: 50, Scale: 1.5, Rotation: 45, Width: 80, Height: 60}); err != nil {
		t.Fatal(err)
	}
	line := document.Annotation{
		ID: "l", Type: document.AnnotationLine,
		Points: []document.Point{{X: 10, Y: 10}, {X: 200, Y: 120}},
		Stroke: document.Stroke{Color: "#112233", Width: 2, Opacity: 1},
	}
	text := document.Annotation{
		ID: "t", Type: document.AnnotationText, Text: "hi", FontSize: 12,
		Box:    &document.Box{X: 120, Y: 70, Width: 50, Height: 20, Rotation: 10},
		Stroke: document.Stroke{Color: "#000000", Width: 1, Opacity: 1},
	}
	for _, a := range []document.Annotation{line, text} {
		if _, err := s.AddAnnotation("", a); err != nil {
			t.Fatalf("AddAnnotation: %v", err)
		}
	}

	for _, id := range []string{"l", "t"} {
		if _, err := s.ReparentToImage(id, "", "a"); err != nil {
			t.Fatalf("ReparentToImage(%s): %v", id, err)
		}
	}
	doc := s.Document()
	if len(doc.Annotations) != 0 || len(doc.Images["a"].Annotations) != 2 {
		t.Fatalf("annotations not moved onto the image: %+v", doc)
	}
	if doc.Images["a"].Annotations[0].Stroke != line.Stroke {
		t.Error("style changed by re-parenting")
	}

	if _, err := s.ReparentToCanvas([]string{"l", "t"}, "a"); err != nil {
		t.Fatalf("ReparentToCanvas: %v", err)
	}
	doc = s.Document()
	if len(doc.Annotations) != 2 {
		t.Fatalf("canvas has %d annotations, want 2", len(doc.Annotations))
	}
	gotLine, gotText := doc.Annotations[0], doc.Annotations[1]
	for i, p := range gotLine.Points {
		if !near(p.X, line.Points[i].X) || !near(p.Y, line.Points[i].Y) {
			t.Errorf("point %d = %+v, want %+v", i, p, line.Points[i])
		}
	}
	b, want := gotText.Box, text.Box
	if !near(b.X, want.X) || !near(b.Y, want.Y) || !near(b.Width, want.Width) || !near(b.Rotation, want.Rotation) {
		t.Errorf("box = %+v, want %+v", *b, *want)
	}
	if !near(gotText.FontSize, 12) {
		t.Errorf("font size = %v, want 12", gotText.FontSize)
	}
	if gotText.ID != "t" || gotText.Type != document.AnnotationText {
		t.Error("identity changed by re-parenting")
	}
}

func TestReparentErrors(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	id, err := s.AddAnnotation("", document.Annotation{Type: document.AnnotationArrow, Points: []document.Point{{}, {X: 5, Y: 5}}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.ReparentToImage(id, "", "missing"); !errors.Is(err, apperr.ErrEntityNotFound) {
		t.Errorf("unknown target err = %v, want ErrEntityNotFound", err)
	}
	if _, err := s.ReparentToImage(id, "a", "a"); !errors.Is(err, apperr.ErrEntityNotFound) {
		t.Errorf("wrong source host err = %v, want ErrEntityNotFound", err)
	}
	if _, err := s.ReparentToCanvas([]string{id}, "a"); !errors.Is(err, apperr.ErrEntityNotFound) {
		t.Errorf("annotation not on image err = %v, want ErrEntityNotFound", err)
	}
}

func TestCommonPropertiesAndWriteBack(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 0, 0, 10, 10)
	four, eight := 4.0, 8.0
	if _, err := s.SetImageOutline([]string{"a"}, Outline{Width: &four}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetImageOutline([]string{"b"}, Outline{Width: &eight}); err != nil {
		t.Fatal(err)
	}
	if err := s.Select("a", "b"); err != nil {
		t.Fatal(err)
	}

	props := s.CommonProperties(selection.KeyOutlineWidth)
	if !selection.IsMixed(props[selection.KeyOutlineWidth]) {
		t.Fatalf("outlineWidth = %v, want MIXED", props[selection.KeyOutlineWidth])
	}
	if _, err := s.WriteBack(map[selection.Key]selection.Value{selection.KeyOutlineWidth: 6.0}); err != nil {
		t.Fatalf("WriteBack: %v", err)
	}
	if got := s.CommonProperties(selection.KeyOutlineWidth)[selection.KeyOutlineWidth]; got != 6.0 {
		t.Errorf("outlineWidth = %v, want 6", got)
	}

	s.Undo()
	doc := s.Document()
	if *doc.Images["a"].OutlineWidth != 4 || *doc.Images["b"].OutlineWidth != 8 {
		t.Error("undo did not restore individual widths")
	}
}

func TestWriteBackRequiresSelection(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.WriteBack(map[selection.Key]selection.Value{selection.KeyStrokeWidth: 2.0}); !errors.Is(err, apperr.ErrInvalidSelection) {
		t.Errorf("err = %v, want ErrInvalidSelection", err)
	}
}

func TestAvailableCategories(t *testing.T) {
	s := newTestStore(t)
	if got := s.AvailableCategories("text"); !slices.Equal(got, []selection.Category{selection.CategoryStroke, selection.CategoryBackground}) {
		t.Errorf("text tool categories = %v", got)
	}
	if got := s.AvailableCategories("select"); got != nil {
		t.Errorf("select tool categories = %v, want none", got)
	}

	rect, _ := s.AddAnnotation("", document.Annotation{Type: document.AnnotationRect, Box: &document.Box{Width: 5, Height: 5}})
	text, _ := s.AddAnnotation("", document.Annotation{Type: document.AnnotationText, Box: &document.Box{Width: 5, Height: 5}, FontSize: 10})
	if err := s.SelectAnnotations(rect, text); err != nil {
		t.Fatal(err)
	}
	want := []selection.Category{selection.CategoryStroke, selection.CategoryFill, selection.CategoryBackground}
	if got := s.AvailableCategories("line"); !slices.Equal(got, want) {
		t.Errorf("selection categories = %v, want %v", got, want)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := newTestStore(t)
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	addImage(t, s, "a", 0, 0, 10, 10)
	if len(got) != 1 || !got[0].CanUndo || len(got[0].Scene.Layers) != 1 {
		t.Fatalf("snapshots = %+v", got)
	}
	s.Undo()
	if len(got) != 2 || got[1].CanUndo || !got[1].CanRedo || got[1].RedoLabel != "add image" {
		t.Errorf("after undo snapshot = %+v", got[1])
	}

	unsubscribe()
	s.Redo()
	if len(got) != 2 {
		t.Error("observer called after unsubscribe")
	}
}

func TestLoadValidatesAndResetsHistory(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)

	bad := document.NewEmptyScene()
	bad.Images["x"] = document.CanvasImage{ID: "x", BitmapID: "bmp", Scale: 1, Width: 1, Height: 1}
	if err := s.Load(bad); !errors.Is(err, apperr.ErrInvalidScene) {
		t.Fatalf("Load of unplaced image err = %v, want ErrInvalidScene", err)
	}
	if _, ok := s.Document().Images["a"]; !ok {
		t.Fatal("failed load replaced the scene")
	}

	bad.Layers = append(bad.Layers, document.Layer{Kind: document.LayerImage, ID: "x"})
	if err := s.Load(bad); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CanUndo() {
		t.Error("history survived Load")
	}
}

func TestRemoveImagesPrunesGroupsAndSelection(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 0, 0, 10, 10)
	addImage(t, s, "c", 0, 0, 10, 10)
	gid, err := s.CreateGroup([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Select("a", "c"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.RemoveImages([]string{"a", "b"}); err != nil {
		t.Fatalf("RemoveImages: %v", err)
	}
	doc := s.Document()
	if _, ok := doc.Groups[gid]; ok {
		t.Error("emptied group not removed")
	}
	if !slices.Equal(layerIDs(s), []string{"c"}) {
		t.Errorf("layers = %v, want [c]", layerIDs(s))
	}
	if got := s.Selection().Images; !slices.Equal(got, []string{"c"}) {
		t.Errorf("selection = %v, want [c]", got)
	}

	s.Undo()
	if got := s.Selection().Images; !slices.Equal(got, []string{"c"}) {
		t.Errorf("undo should not resurrect pruned selection, got %v", got)
	}
}

func TestSetImageTransformsIsOneStep(t *testing.T) {
	s := newTestStore(t)
	addImage(t, s, "a", 0, 0, 10, 10)
	addImage(t, s, "b", 50, 0, 10, 10)

	out, err := s.SetImageTransforms(map[string]Transform{
		"a": {X: 5, Y: 5, Scale: 2, Rotation: 90},
		"b": {X: 70, Y: 10, Scale: 1},
	})
	if err != nil || out != apperr.Applied {
		t.Fatalf("SetImageTransforms = %v, %v", out, err)
	}
	if a := s.Document().Images["a"]; a.X != 5 || a.Scale != 2 || a.Rotation != 90 {
		t.Errorf("a = %+v", a)
	}

	if out := s.Undo(); out != apperr.Applied {
		t.Fatalf("Undo = %v", out)
	}
	doc := s.Document()
	if doc.Images["a"].X != 0 || doc.Images["b"].X != 50 {
		t.Errorf("undo left a.X=%v b.X=%v", doc.Images["a"].X, doc.Images["b"].X)
	}

	if _, err := s.SetImageTransforms(map[string]Transform{"a": {Scale: 0}}); !errors.Is(err, apperr.ErrInvalidValue) {
		t.Errorf("zero scale err = %v", err)
	}
	if _, err := s.SetImageTransforms(map[string]Transform{"a": {Scale: 1}, "zz": {Scale: 1}}); !errors.Is(err, apperr.ErrEntityNotFound) {
		t.Errorf("missing id err = %v", err)
	}
	if got := s.Document().Images["a"].Scale; got != 1 {
		t.Errorf("failed batch changed a: scale %v", got)
	}
}
