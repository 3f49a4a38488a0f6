package scene

import (
	"fmt"
	"strings"
	"time"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/selection"
	"github.com/inamate/pinboard/internal/typeid"
)

// AddImage places an image at the front of the top-level list. Missing id,
// scale and creation time are filled in.
func (s *Store) AddImage(img document.CanvasImage) (string, error) {
	img = img.Clone()
	if img.ID == "" {
		img.ID = s.newID(typeid.PrefixImage)
	}
	if img.Scale == 0 {
		img.Scale = 1
	}
	if img.CreatedAt == "" {
		img.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if img.Name == "" {
		img.Name = img.ID
	}
	_, err := s.mutate("add image", func(sc *document.Scene) error {
		if sc.Exists(img.ID) {
			return fmt.Errorf("image %s already exists: %w", img.ID, apperr.ErrInvalidValue)
		}
		sc.Images[img.ID] = img
		sc.Layers = append(sc.Layers, document.Layer{Kind: document.LayerImage, ID: img.ID})
		return nil
	})
	if err != nil {
		return "", err
	}
	return img.ID, nil
}

// RemoveImages deletes images together with their annotations and crop
// lineage. Groups left empty are removed.
func (s *Store) RemoveImages(imageIDs []string) (apperr.Outcome, error) {
	return s.mutate("delete images", func(sc *document.Scene) error {
		for _, id := range imageIDs {
			img, ok := sc.Images[id]
			if !ok {
				return notFound("image", id)
			}
			detach(sc, id)
			delete(sc.Images, id)
			for ref := img.UncroppedFromID; ref != nil; {
				rec, ok := sc.Lineage[*ref]
				if !ok {
					break
				}
				delete(sc.Lineage, *ref)
				ref = rec.UncroppedFromID
			}
		}
		return nil
	})
}

func (s *Store) RenameImage(imageID, name string) (apperr.Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.NoOp, fmt.Errorf("rename image: empty name: %w", apperr.ErrInvalidValue)
	}
	return s.mutate("rename image", func(sc *document.Scene) error {
		img, ok := sc.Images[imageID]
		if !ok {
			return notFound("image", imageID)
		}
		img.Name = name
		sc.Images[imageID] = img
		return nil
	})
}

// Transform is the committed placement of an image after an interactive drag,
// resize or rotate.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// SetImageTransform commits a new placement. Previews during a gesture must
// not be sent here; only the final pointer-release state is.
func (s *Store) SetImageTransform(imageID string, t Transform) (apperr.Outcome, error) {
	return s.SetImageTransforms(map[string]Transform{imageID: t})
}

// SetImageTransforms commits the placements of several images, such as a
// multi-selection drag, as one undo step.
func (s *Store) SetImageTransforms(ts map[string]Transform) (apperr.Outcome, error) {
	for id, t := range ts {
		if t.Scale <= 0 {
			return apperr.NoOp, fmt.Errorf("transform image %s: scale %v: %w", id, t.Scale, apperr.ErrInvalidValue)
		}
	}
	label := "transform image"
	if len(ts) > 1 {
		label = "transform images"
	}
	return s.mutate(label, func(sc *document.Scene) error {
		for id, t := range ts {
			img, ok := sc.Images[id]
			if !ok {
				return notFound("image", id)
			}
			img.X, img.Y, img.Scale, img.Rotation = t.X, t.Y, t.Scale, t.Rotation
			sc.Images[id] = img
		}
		return nil
	})
}

// Outline is a partial outline style; nil fields are left as they are.
type Outline struct {
	Color   *string  `json:"color,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
}

func (o Outline) changes() map[selection.Key]selection.Value {
	ch := make(map[selection.Key]selection.Value, 3)
	if o.Color != nil {
		ch[selection.KeyOutlineColor] = *o.Color
	}
	if o.Width != nil {
		ch[selection.KeyOutlineWidth] = *o.Width
	}
	if o.Opacity != nil {
		ch[selection.KeyOutlineOpacity] = *o.Opacity
	}
	return ch
}

// SetImageOutline styles the outline of the given images, whether or not
// they are selected.
func (s *Store) SetImageOutline(imageIDs []string, o Outline) (apperr.Outcome, error) {
	return s.mutate("set outline", func(sc *document.Scene) error {
		for _, id := range imageIDs {
			if _, ok := sc.Images[id]; !ok {
				return notFound("image", id)
			}
		}
		ents, flush := Selection{Images: imageIDs}.entities(sc)
		if err := selection.WriteBack(ents, o.changes()); err != nil {
			return err
		}
		flush()
		return nil
	})
}
