package document

// LayerIndex returns the position of id in the top-level ordering, or -1.
func (s *Scene) LayerIndex(id string) int {
	for i, l := range s.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// GroupOf returns the id of the group holding imageID, or "" when the image is
// top-level or unknown.
func (s *Scene) GroupOf(imageID string) string {
	for id, g := range s.Groups {
		for _, member := range g.ImageIDs {
			if member == imageID {
				return id
			}
		}
	}
	return ""
}

// Exists reports whether id names an image or a group.
func (s *Scene) Exists(id string) bool {
	if _, ok := s.Images[id]; ok {
		return true
	}
	_, ok := s.Groups[id]
	return ok
}

// HasAnnotation reports whether an annotation id is held by any host.
func (s *Scene) HasAnnotation(id string) bool {
	_, _, ok := s.FindAnnotation(id)
	return ok
}

// FindAnnotation locates an annotation by id across every host. hostID is ""
// for the free canvas.
func (s *Scene) FindAnnotation(id string) (hostID string, index int, ok bool) {
	for i, a := range s.Annotations {
		if a.ID == id {
			return "", i, true
		}
	}
	for imgID, img := range s.Images {
		for i, a := range img.Annotations {
			if a.ID == id {
				return imgID, i, true
			}
		}
	}
	return "", -1, false
}

// ImagesInOrder returns every image id in painter's order, expanding groups in place.
func (s *Scene) ImagesInOrder() []string {
	ids := make([]string, 0, len(s.Images))
	for _, l := range s.Layers {
		switch l.Kind {
		case LayerImage:
			ids = append(ids, l.ID)
		case LayerGroup:
			ids = append(ids, s.Groups[l.ID].ImageIDs...)
		}
	}
	return ids
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
