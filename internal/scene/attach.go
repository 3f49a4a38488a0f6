package scene

import (
	"fmt"
	"slices"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/typeid"
)

// ReparentToImage moves an annotation from its current host onto toImageID,
// converting its geometry into the image's local space so it keeps its
// place on the canvas. fromHostID is "" when the annotation is on the canvas.
func (s *Store) ReparentToImage(annotationID, fromHostID, toImageID string) (apperr.Outcome, error) {
	return s.mutate("attach annotation", func(sc *document.Scene) error {
		target, ok := sc.Images[toImageID]
		if !ok {
			return notFound("image", toImageID)
		}
		if fromHostID == toImageID {
			if !slices.ContainsFunc(target.Annotations, func(a document.Annotation) bool { return a.ID == annotationID }) {
				return notFound("annotation", annotationID)
			}
			return nil
		}
		a, err := takeAnnotation(sc, fromHostID, annotationID)
		if err != nil {
			return err
		}
		if fromHostID != "" {
			a = engine.AnnotationToCanvas(a, engine.FrameOf(sc.Images[fromHostID]))
		}
		target = sc.Images[toImageID]
		target.Annotations = append(target.Annotations, engine.AnnotationToLocal(a, engine.FrameOf(target)))
		sc.Images[toImageID] = target
		return nil
	})
}

// ReparentToCanvas moves annotations off an image onto the free canvas,
// applying the image's transform to their geometry.
func (s *Store) ReparentToCanvas(annotationIDs []string, fromImageID string) (apperr.Outcome, error) {
	return s.mutate("detach annotations", func(sc *document.Scene) error {
		host, ok := sc.Images[fromImageID]
		if !ok {
			return notFound("image", fromImageID)
		}
		frame := engine.FrameOf(host)
		for _, id := range annotationIDs {
			a, err := takeAnnotation(sc, fromImageID, id)
			if err != nil {
				return err
			}
			sc.Annotations = append(sc.Annotations, engine.AnnotationToCanvas(a, frame))
		}
		return nil
	})
}

// takeAnnotation removes an annotation from hostID's list and returns it.
func takeAnnotation(sc *document.Scene, hostID, annotationID string) (document.Annotation, error) {
	list, err := hostList(sc, hostID)
	if err != nil {
		return document.Annotation{}, err
	}
	i := slices.IndexFunc(list, func(a document.Annotation) bool { return a.ID == annotationID })
	if i < 0 {
		return document.Annotation{}, fmt.Errorf("on host %q: %w", hostID, notFound("annotation", annotationID))
	}
	a := list[i]
	setHostList(sc, hostID, slices.Delete(list, i, i+1))
	return a, nil
}

func hostList(sc *document.Scene, hostID string) ([]document.Annotation, error) {
	if hostID == "" {
		return sc.Annotations, nil
	}
	img, ok := sc.Images[hostID]
	if !ok {
		return nil, notFound("image", hostID)
	}
	return img.Annotations, nil
}

func setHostList(sc *document.Scene, hostID string, list []document.Annotation) {
	if hostID == "" {
		sc.Annotations = list
		return
	}
	img := sc.Images[hostID]
	img.Annotations = list
	sc.Images[hostID] = img
}

// AddAnnotation places a new annotation on top of hostID's list ("" for the
// canvas). Its geometry is taken to be in the host's space. An empty id is
// assigned.
func (s *Store) AddAnnotation(hostID string, a document.Annotation) (string, error) {
	a = a.Clone()
	if a.ID == "" {
		a.ID = s.newID(typeid.PrefixAnnotation)
	}
	_, err := s.mutate("add "+string(a.Type), func(sc *document.Scene) error {
		if sc.HasAnnotation(a.ID) {
			return fmt.Errorf("annotation %s already exists: %w", a.ID, apperr.ErrInvalidValue)
		}
		list, err := hostList(sc, hostID)
		if err != nil {
			return err
		}
		setHostList(sc, hostID, append(list, a))
		return nil
	})
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// RemoveAnnotations deletes annotations from whichever host holds them.
func (s *Store) RemoveAnnotations(annotationIDs []string) (apperr.Outcome, error) {
	return s.mutate("delete annotations", func(sc *document.Scene) error {
		for _, id := range annotationIDs {
			host, _, ok := sc.FindAnnotation(id)
			if !ok {
				return notFound("annotation", id)
			}
			if _, err := takeAnnotation(sc, host, id); err != nil {
				return err
			}
		}
		return nil
	})
}
