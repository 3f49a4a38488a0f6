package engine

import (
	"image"
	"testing"

	"github.com/inamate/pinboard/internal/document"
)

func TestAnnotationRoundTrip(t *testing.T) {
	host := Frame{ID: "img", X: 120, Y: -40, Scale: 1.75, Rotation: 37, Width: 300, Height: 200}

	cases := []document.Annotation{
		{ID: "p", Type: document.AnnotationPath, Points: []document.Point{{X: 1, Y: 2}, {X: 50, Y: 80}, {X: -3, Y: 9}}},
		{ID: "r", Type: document.AnnotationRect, Box: &document.Box{X: 10, Y: 20, Width: 30, Height: 40, Rotation: 5}},
		{ID: "t", Type: document.AnnotationText, Box: &document.Box{X: 5, Y: 5, Width: 60, Height: 12}, Text: "hi", FontSize: 14},
	}

	for _, orig := range cases {
		local := AnnotationToLocal(orig, host)
		back := AnnotationToCanvas(local, host)

		for i := range orig.Points {
			if !near(back.Points[i].X, orig.Points[i].X) || !near(back.Points[i].Y, orig.Points[i].Y) {
				t.Errorf("%s point %d = %+v, want %+v", orig.ID, i, back.Points[i], orig.Points[i])
			}
		}
		if orig.Box != nil {
			o, b := *orig.Box, *back.Box
			if !near(o.X, b.X) || !near(o.Y, b.Y) || !near(o.Width, b.Width) || !near(o.Height, b.Height) || !near(o.Rotation, b.Rotation) {
				t.Errorf("%s box = %+v, want %+v", orig.ID, b, o)
			}
		}
		if !near(back.FontSize, orig.FontSize) {
			t.Errorf("%s font size = %v, want %v", orig.ID, back.FontSize, orig.FontSize)
		}
		if back.ID != orig.ID || back.Type != orig.Type || back.Stroke != orig.Stroke {
			t.Errorf("%s identity or style changed: %+v", orig.ID, back)
		}
	}
}

func TestAnnotationToLocalDoesNotAlias(t *testing.T) {
	orig := document.Annotation{ID: "p", Type: document.AnnotationLine, Points: []document.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}}
	host := Frame{X: 10, Y: 10, Scale: 2, Width: 10, Height: 10}

	local := AnnotationToLocal(orig, host)
	if orig.Points[0].X != 10 {
		t.Fatalf("source annotation mutated: %+v", orig.Points)
	}
	if local.Points[1].X != 5 || local.Points[1].Y != 5 {
		t.Errorf("local point = %+v, want (5,5)", local.Points[1])
	}
}

func TestCropRegion(t *testing.T) {
	f := Frame{X: 100, Y: 100, Scale: 2, Width: 50, Height: 40}

	region, ok := CropRegion(f, Rect{X: 110, Y: 90, Width: 21, Height: 40})
	if !ok {
		t.Fatal("expected an intersecting region")
	}
	// local x 5..15.5 -> 5..16, y -5..15 -> 0..15
	if want := image.Rect(5, 0, 16, 15); region != want {
		t.Errorf("region = %v, want %v", region, want)
	}

	if _, ok := CropRegion(f, Rect{X: 0, Y: 0, Width: 50, Height: 50}); ok {
		t.Error("disjoint rect should not produce a region")
	}
}

func TestFromTransformInvert(t *testing.T) {
	m := FromTransform(12, -7, 1.5, 73)
	inv := m.Invert()
	for _, p := range [][2]float64{{0, 0}, {40, -3}, {-17.5, 220}} {
		cx, cy := m.TransformPoint(p[0], p[1])
		lx, ly := inv.TransformPoint(cx, cy)
		if !near(lx, p[0]) || !near(ly, p[1]) {
			t.Errorf("round trip of %v = (%v,%v)", p, lx, ly)
		}
	}
	x, y := m.TransformPoint(0, 0)
	if x != 12 || y != -7 {
		t.Errorf("origin maps to (%v,%v), want (12,-7)", x, y)
	}
}
