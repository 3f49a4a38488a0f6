package document

// Clone returns a deep copy of the scene. Nil-ness of slices and pointers is
// preserved so that clones compare equal to their source.
func (s *Scene) Clone() *Scene {
	out := &Scene{
		Version:     s.Version,
		Layers:      cloneSlice(s.Layers),
		Annotations: cloneAnnotations(s.Annotations),
	}
	if s.Images != nil {
		out.Images = make(map[string]CanvasImage, len(s.Images))
		for id, img := range s.Images {
			out.Images[id] = img.Clone()
		}
	}
	if s.Groups != nil {
		out.Groups = make(map[string]Group, len(s.Groups))
		for id, g := range s.Groups {
			g.ImageIDs = cloneSlice(g.ImageIDs)
			out.Groups[id] = g
		}
	}
	if s.Lineage != nil {
		out.Lineage = make(map[string]CropRecord, len(s.Lineage))
		for id, rec := range s.Lineage {
			rec.UncroppedFromID = clonePtr(rec.UncroppedFromID)
			out.Lineage[id] = rec
		}
	}
	return out
}

// Normalize replaces nil collections with empty ones so that structurally
// identical scenes are also DeepEqual.
func (s *Scene) Normalize() {
	if s.Images == nil {
		s.Images = map[string]CanvasImage{}
	}
	if s.Groups == nil {
		s.Groups = map[string]Group{}
	}
	if s.Lineage == nil {
		s.Lineage = map[string]CropRecord{}
	}
	if s.Layers == nil {
		s.Layers = []Layer{}
	}
	if s.Annotations == nil {
		s.Annotations = []Annotation{}
	}
	for id, img := range s.Images {
		if img.Annotations == nil {
			img.Annotations = []Annotation{}
			s.Images[id] = img
		}
	}
	for id, g := range s.Groups {
		if g.ImageIDs == nil {
			g.ImageIDs = []string{}
			s.Groups[id] = g
		}
	}
}

func (img CanvasImage) Clone() CanvasImage {
	img.OutlineColor = clonePtr(img.OutlineColor)
	img.OutlineWidth = clonePtr(img.OutlineWidth)
	img.OutlineOpacity = clonePtr(img.OutlineOpacity)
	img.UncroppedFromID = clonePtr(img.UncroppedFromID)
	img.Annotations = cloneAnnotations(img.Annotations)
	return img
}

func (a Annotation) Clone() Annotation {
	a.Points = cloneSlice(a.Points)
	a.Box = clonePtr(a.Box)
	a.Fill = clonePtr(a.Fill)
	a.Background = clonePtr(a.Background)
	return a
}

func cloneAnnotations(in []Annotation) []Annotation {
	if in == nil {
		return nil
	}
	out := make([]Annotation, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
