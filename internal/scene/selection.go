package scene

import (
	"fmt"
	"slices"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/selection"
)

// AnnotationRef names an annotation and the host holding it ("" for the free canvas).
type AnnotationRef struct {
	HostID       string `json:"hostId"`
	AnnotationID string `json:"annotationId"`
}

// Selection is the transient set of selected entities. Both lists keep
// insertion order, which is the tie-break wherever "first selected" matters.
type Selection struct {
	Images      []string        `json:"images"`
	Annotations []AnnotationRef `json:"annotations"`
}

func (sel Selection) IsEmpty() bool {
	return len(sel.Images) == 0 && len(sel.Annotations) == 0
}

func (sel Selection) clone() Selection {
	return Selection{
		Images:      slices.Clone(sel.Images),
		Annotations: slices.Clone(sel.Annotations),
	}
}

// prune drops references to entities that no longer exist and refreshes the
// host of every annotation reference.
func (sel Selection) prune(sc *document.Scene) Selection {
	var out Selection
	for _, id := range sel.Images {
		if _, ok := sc.Images[id]; ok {
			out.Images = append(out.Images, id)
		}
	}
	for _, ref := range sel.Annotations {
		if host, _, ok := sc.FindAnnotation(ref.AnnotationID); ok {
			out.Annotations = append(out.Annotations, AnnotationRef{HostID: host, AnnotationID: ref.AnnotationID})
		}
	}
	return out
}

// remap replaces image ids according to renamed, keeping their positions.
func (sel *Selection) remap(renamed map[string]string) {
	for i, id := range sel.Images {
		if to, ok := renamed[id]; ok {
			sel.Images[i] = to
		}
	}
}

// lineageRenames maps each image id present in from but not in to onto the
// image that crop lineage links it to in to, in either direction.
func lineageRenames(from, to *document.Scene) map[string]string {
	renamed := make(map[string]string)
	for id, img := range to.Images {
		if ref := img.UncroppedFromID; ref != nil {
			if _, ok := to.Images[*ref]; !ok {
				renamed[*ref] = id
			}
		}
	}
	for id, img := range from.Images {
		if _, ok := to.Images[id]; ok || img.UncroppedFromID == nil {
			continue
		}
		if _, ok := to.Images[*img.UncroppedFromID]; ok {
			renamed[id] = *img.UncroppedFromID
		}
	}
	return renamed
}

func (s *Store) Selection() Selection {
	return s.selection.clone()
}

// Select replaces the selected images. Duplicates are dropped, first
// occurrence wins.
func (s *Store) Select(imageIDs ...string) error {
	ids := make([]string, 0, len(imageIDs))
	for _, id := range imageIDs {
		if _, ok := s.scene.Images[id]; !ok {
			return fmt.Errorf("select: %w", notFound("image", id))
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	s.selection.Images = ids
	s.revision++
	s.notify()
	return nil
}

// SelectAnnotations replaces the selected annotations. Hosts are looked up.
func (s *Store) SelectAnnotations(annotationIDs ...string) error {
	refs := make([]AnnotationRef, 0, len(annotationIDs))
	for _, id := range annotationIDs {
		host, _, ok := s.scene.FindAnnotation(id)
		if !ok {
			return fmt.Errorf("select annotations: %w", notFound("annotation", id))
		}
		ref := AnnotationRef{HostID: host, AnnotationID: id}
		if !slices.Contains(refs, ref) {
			refs = append(refs, ref)
		}
	}
	s.selection.Annotations = refs
	s.revision++
	s.notify()
	return nil
}

func (s *Store) ClearSelection() {
	if s.selection.IsEmpty() {
		return
	}
	s.selection = Selection{}
	s.revision++
	s.notify()
}

// entities adapts the selected entities of sc for the resolver. The adapters
// point into sc, so writes through them land in sc; flush must be called to
// store image edits back into the image map.
func (sel Selection) entities(sc *document.Scene) (ents []selection.Entity, flush func()) {
	images := make([]*document.CanvasImage, 0, len(sel.Images))
	for _, id := range sel.Images {
		img := sc.Images[id]
		images = append(images, &img)
		ents = append(ents, selection.Image{CanvasImage: &img})
	}
	for _, ref := range sel.Annotations {
		if a := annotationPtr(sc, ref); a != nil {
			ents = append(ents, selection.Annotation{Annotation: a})
		}
	}
	return ents, func() {
		for _, img := range images {
			sc.Images[img.ID] = *img
		}
	}
}

// annotationPtr points at the annotation inside its host's list. For image
// hosts the list's backing array is shared with the map value.
func annotationPtr(sc *document.Scene, ref AnnotationRef) *document.Annotation {
	list := sc.Annotations
	if ref.HostID != "" {
		list = sc.Images[ref.HostID].Annotations
	}
	for i := range list {
		if list[i].ID == ref.AnnotationID {
			return &list[i]
		}
	}
	return nil
}

func (sel Selection) kinds(sc *document.Scene) []selection.Kind {
	ents, _ := sel.entities(sc)
	kinds := make([]selection.Kind, 0, len(ents))
	for _, e := range ents {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

// CommonProperties resolves keys across the current selection. With no keys,
// every key declared by a selected kind is resolved.
func (s *Store) CommonProperties(keys ...selection.Key) map[selection.Key]selection.Value {
	ents, _ := s.selection.entities(s.scene)
	if len(keys) == 0 {
		for _, k := range s.selection.kinds(s.scene) {
			for _, key := range k.Keys() {
				if !slices.Contains(keys, key) {
					keys = append(keys, key)
				}
			}
		}
	}
	return selection.ResolveCommon(ents, keys)
}

// WriteBack applies changes to every selected entity declaring each key.
func (s *Store) WriteBack(changes map[selection.Key]selection.Value) (apperr.Outcome, error) {
	if s.selection.IsEmpty() {
		return apperr.NoOp, fmt.Errorf("edit properties: %w", apperr.ErrInvalidSelection)
	}
	return s.mutate("edit properties", func(sc *document.Scene) error {
		ents, flush := s.selection.entities(sc)
		if err := selection.WriteBack(ents, changes); err != nil {
			return err
		}
		flush()
		return nil
	})
}

// AvailableCategories returns the style categories the editing panel should
// offer: those of the selected kinds, or of the active tool when nothing is
// selected.
func (s *Store) AvailableCategories(activeTool string) []selection.Category {
	if !s.selection.IsEmpty() {
		return selection.Categories(s.selection.kinds(s.scene))
	}
	if k, ok := selection.ToolKind(activeTool); ok {
		return selection.Categories([]selection.Kind{k})
	}
	return nil
}
