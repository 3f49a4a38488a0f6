package engine

import "github.com/inamate/pinboard/internal/document"

// AnnotationToCanvas maps an annotation held in host's local space to canvas
// space. Only geometry changes; id, type and style are preserved.
func AnnotationToCanvas(a document.Annotation, host Frame) document.Annotation {
	return mapAnnotation(a, host.Matrix(), host.Rotation, host.Scale)
}

// AnnotationToLocal is the exact inverse of AnnotationToCanvas.
func AnnotationToLocal(a document.Annotation, host Frame) document.Annotation {
	return mapAnnotation(a, host.Matrix().Invert(), -host.Rotation, 1/host.Scale)
}

func mapAnnotation(a document.Annotation, m Matrix2D, rotation, scale float64) document.Annotation {
	out := a.Clone()
	for i, p := range out.Points {
		out.Points[i].X, out.Points[i].Y = m.TransformPoint(p.X, p.Y)
	}
	if out.Box != nil {
		out.Box.X, out.Box.Y = m.TransformPoint(out.Box.X, out.Box.Y)
		out.Box.Width *= scale
		out.Box.Height *= scale
		out.Box.Rotation += rotation
	}
	if out.Type == document.AnnotationText {
		out.FontSize *= scale
	}
	return out
}

// OffsetAnnotation translates an annotation's geometry within its host's local space.
func OffsetAnnotation(a document.Annotation, dx, dy float64) document.Annotation {
	return mapAnnotation(a, Translate(dx, dy), 0, 1)
}
