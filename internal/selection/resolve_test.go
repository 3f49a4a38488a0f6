package selection

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
)

func ptr[T any](v T) *T { return &v }

func TestOutlineWidthMixedThenWriteBack(t *testing.T) {
	a := &document.CanvasImage{ID: "a", OutlineWidth: ptr(4.0)}
	b := &document.CanvasImage{ID: "b", OutlineWidth: ptr(8.0)}
	entities := []Entity{Image{a}, Image{b}}

	got := ResolveCommon(entities, []Key{KeyOutlineWidth})
	if !IsMixed(got[KeyOutlineWidth]) {
		t.Fatalf("outlineWidth = %v, want MIXED", got[KeyOutlineWidth])
	}

	if err := WriteBack(entities, map[Key]Value{KeyOutlineWidth: 6.0}); err != nil {
		t.Fatalf("WriteBack: %v", err)
	}
	if *a.OutlineWidth != 6 || *b.OutlineWidth != 6 {
		t.Errorf("widths = %v, %v, want 6, 6", *a.OutlineWidth, *b.OutlineWidth)
	}

	got = ResolveCommon(entities, []Key{KeyOutlineWidth})
	if got[KeyOutlineWidth] != 6.0 {
		t.Errorf("outlineWidth = %v, want 6", got[KeyOutlineWidth])
	}
}

func TestResolveUsesDefaultsForUnsetOutline(t *testing.T) {
	a := &document.CanvasImage{ID: "a"}
	b := &document.CanvasImage{ID: "b", OutlineColor: ptr(document.DefaultOutlineColor)}

	got := ResolveCommon([]Entity{Image{a}, Image{b}}, []Key{KeyOutlineColor})
	if got[KeyOutlineColor] != document.DefaultOutlineColor {
		t.Errorf("outlineColor = %v, want default", got[KeyOutlineColor])
	}
}

func TestResolvedValuesAreHeldByAllEntities(t *testing.T) {
	rect := &document.Annotation{ID: "r", Type: document.AnnotationRect, Stroke: document.Stroke{Color: "#ff0000", Width: 2, Opacity: 1}, Fill: &document.Paint{Color: "#00ff00", Opacity: 0.5}}
	circle := &document.Annotation{ID: "c", Type: document.AnnotationCircle, Stroke: document.Stroke{Color: "#ff0000", Width: 3, Opacity: 1}}
	text := &document.Annotation{ID: "t", Type: document.AnnotationText, Stroke: document.Stroke{Color: "#ff0000", Width: 2, Opacity: 1}, FontSize: 12, FontFamily: "Inter"}
	entities := []Entity{Annotation{rect}, Annotation{circle}, Annotation{text}}
	keys := []Key{KeyStrokeColor, KeyStrokeWidth, KeyStrokeOpacity, KeyFillColor, KeyFontSize, KeyOutlineWidth}

	got := ResolveCommon(entities, keys)

	for key, v := range got {
		if IsMixed(v) {
			continue
		}
		for _, e := range entities {
			held, ok := e.Get(key)
			if !ok || held != v {
				t.Errorf("%s resolved to %v but entity %v holds %v (declared=%v)", key, v, e.Kind(), held, ok)
			}
		}
	}
	if got[KeyStrokeColor] != "#ff0000" {
		t.Errorf("strokeColor = %v, want #ff0000", got[KeyStrokeColor])
	}
	if !IsMixed(got[KeyStrokeWidth]) {
		t.Errorf("strokeWidth = %v, want MIXED", got[KeyStrokeWidth])
	}
	if !IsMixed(got[KeyFillColor]) {
		t.Errorf("fillColor declared by only some entities should be MIXED, got %v", got[KeyFillColor])
	}
	if _, ok := got[KeyOutlineWidth]; ok {
		t.Error("outlineWidth is declared by no annotation and should be omitted")
	}
}

func TestResolveEmptySelection(t *testing.T) {
	if got := ResolveCommon(nil, []Key{KeyStrokeColor}); len(got) != 0 {
		t.Errorf("empty selection resolved to %v", got)
	}
}

func TestWriteBackValidatesBeforeWriting(t *testing.T) {
	a := &document.Annotation{ID: "a", Type: document.AnnotationLine, Stroke: document.Stroke{Color: "#000000", Width: 1, Opacity: 1}}
	entities := []Entity{Annotation{a}}

	err := WriteBack(entities, map[Key]Value{KeyStrokeWidth: 5.0, KeyStrokeOpacity: 1.5})
	if !errors.Is(err, apperr.ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	if a.Stroke.Width != 1 {
		t.Errorf("width written despite failed validation: %v", a.Stroke.Width)
	}

	if err := WriteBack(entities, map[Key]Value{KeyStrokeColor: "nope"}); !errors.Is(err, apperr.ErrInvalidValue) {
		t.Errorf("bad color err = %v, want ErrInvalidValue", err)
	}
}

func TestWriteBackSkipsMixedAndUndeclared(t *testing.T) {
	line := &document.Annotation{ID: "l", Type: document.AnnotationLine, Stroke: document.Stroke{Color: "#000000", Width: 1, Opacity: 1}}
	rect := &document.Annotation{ID: "r", Type: document.AnnotationRect, Stroke: document.Stroke{Color: "#111111", Width: 1, Opacity: 1}}

	err := WriteBack([]Entity{Annotation{line}, Annotation{rect}}, map[Key]Value{
		KeyStrokeColor: Mixed,
		KeyFillColor:   "#abcdef",
		KeyStrokeWidth: 4,
	})
	if err != nil {
		t.Fatalf("WriteBack: %v", err)
	}
	if line.Stroke.Color != "#000000" || rect.Stroke.Color != "#111111" {
		t.Error("MIXED value must not be written")
	}
	if line.Fill != nil {
		t.Error("line does not declare fill and must not gain one")
	}
	if rect.Fill == nil || rect.Fill.Color != "#abcdef" || rect.Fill.Opacity != 1 {
		t.Errorf("rect fill = %+v", rect.Fill)
	}
	if line.Stroke.Width != 4 || rect.Stroke.Width != 4 {
		t.Errorf("int width not applied: %v %v", line.Stroke.Width, rect.Stroke.Width)
	}
}

func TestCategoriesUnion(t *testing.T) {
	got := Categories([]Kind{KindRect, KindText})
	want := []Category{CategoryStroke, CategoryFill, CategoryBackground}
	if !slices.Equal(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}

	if got := Categories([]Kind{KindImage, KindLine}); !slices.Equal(got, []Category{CategoryStroke, CategoryOutline}) {
		t.Errorf("Categories = %v", got)
	}
}

func TestToolKind(t *testing.T) {
	if k, ok := ToolKind("rectangle"); !ok || k != KindRect {
		t.Errorf("rectangle -> %v, %v", k, ok)
	}
	if _, ok := ToolKind("select"); ok {
		t.Error("select tool should not map to a kind")
	}
}

func TestWriteBackSkipsEchoedMarker(t *testing.T) {
	a := &document.CanvasImage{ID: "a", Name: "Alpha", OutlineWidth: ptr(4.0)}
	b := &document.CanvasImage{ID: "b", Name: "Beta", OutlineWidth: ptr(8.0)}
	entities := []Entity{Image{a}, Image{b}}

	raw, err := json.Marshal(ResolveCommon(entities, []Key{KeyName, KeyOutlineWidth}))
	if err != nil {
		t.Fatal(err)
	}
	var changes map[Key]Value
	if err := json.Unmarshal(raw, &changes); err != nil {
		t.Fatal(err)
	}
	changes[KeyOutlineColor] = "#ff0000"

	if err := WriteBack(entities, changes); err != nil {
		t.Fatalf("WriteBack(%v): %v", changes, err)
	}
	if a.Name != "Alpha" || b.Name != "Beta" {
		t.Errorf("names = %q, %q", a.Name, b.Name)
	}
	if *a.OutlineWidth != 4 || *b.OutlineWidth != 8 {
		t.Errorf("widths = %v, %v", *a.OutlineWidth, *b.OutlineWidth)
	}
	if a.OutlineColor == nil || *a.OutlineColor != "#ff0000" {
		t.Errorf("outline color not written: %v", a.OutlineColor)
	}
}
