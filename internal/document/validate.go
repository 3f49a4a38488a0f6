package document

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/inamate/pinboard/internal/apperr"
)

// Validate checks the entity invariants and the hierarchy: every image is
// placed exactly once (top-level or in one group), groups are disjoint, and
// annotation ids are unique across all hosts.
func (s *Scene) Validate() error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidScene, err)
	}
	return nil
}

func (s *Scene) validate() error {
	for id, img := range s.Images {
		if id != img.ID {
			return fmt.Errorf("image key %q holds id %q", id, img.ID)
		}
		if err := img.Validate(); err != nil {
			return fmt.Errorf("image %s: %w", id, err)
		}
	}

	placed := make(map[string]bool, len(s.Images))
	place := func(id string) error {
		if _, ok := s.Images[id]; !ok {
			return fmt.Errorf("layer references missing image %s", id)
		}
		if placed[id] {
			return fmt.Errorf("image %s placed more than once", id)
		}
		placed[id] = true
		return nil
	}

	seenGroups := make(map[string]bool, len(s.Groups))
	for _, l := range s.Layers {
		switch l.Kind {
		case LayerImage:
			if err := place(l.ID); err != nil {
				return err
			}
		case LayerGroup:
			g, ok := s.Groups[l.ID]
			if !ok {
				return fmt.Errorf("layer references missing group %s", l.ID)
			}
			if seenGroups[l.ID] {
				return fmt.Errorf("group %s placed more than once", l.ID)
			}
			seenGroups[l.ID] = true
			for _, member := range g.ImageIDs {
				if err := place(member); err != nil {
					return fmt.Errorf("group %s: %w", l.ID, err)
				}
			}
		default:
			return fmt.Errorf("unknown layer kind %q", l.Kind)
		}
	}
	if len(placed) != len(s.Images) {
		return errors.New("some images are not placed in any layer")
	}
	if len(seenGroups) != len(s.Groups) {
		return errors.New("some groups are not placed in any layer")
	}

	annIDs := make(map[string]bool)
	check := func(a Annotation) error {
		if annIDs[a.ID] {
			return fmt.Errorf("annotation id %s is not unique", a.ID)
		}
		annIDs[a.ID] = true
		return a.Validate()
	}
	for _, a := range s.Annotations {
		if err := check(a); err != nil {
			return err
		}
	}
	for _, id := range s.ImagesInOrder() {
		for _, a := range s.Images[id].Annotations {
			if err := check(a); err != nil {
				return fmt.Errorf("image %s: %w", id, err)
			}
		}
	}
	return nil
}

// Validate checks a single image's attribute invariants.
func (img CanvasImage) Validate() error {
	return validation.ValidateStruct(&img,
		validation.Field(&img.ID, validation.Required),
		validation.Field(&img.BitmapID, validation.Required),
		validation.Field(&img.Scale, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&img.Width, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&img.Height, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&img.OutlineColor, is.HexColor),
		validation.Field(&img.OutlineWidth, validation.Min(0.0)),
		validation.Field(&img.OutlineOpacity, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Validate checks the geometry and style of an annotation against its type.
func (a Annotation) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Type, validation.Required, validation.By(func(any) error {
			if !a.Type.Valid() {
				return fmt.Errorf("unknown annotation type %q", a.Type)
			}
			return nil
		})),
		validation.Field(&a.Points, validation.When(!a.Type.HasBox(), validation.Required, validation.Length(2, 0))),
		validation.Field(&a.Box, validation.When(a.Type.HasBox(), validation.NotNil)),
		validation.Field(&a.FontSize, validation.When(a.Type == AnnotationText, validation.Required, validation.Min(0.0).Exclusive())),
	)
	if err != nil {
		return err
	}
	return ValidateStroke(a.Stroke)
}

func ValidateStroke(st Stroke) error {
	return validation.ValidateStruct(&st,
		validation.Field(&st.Color, is.HexColor),
		validation.Field(&st.Width, validation.Min(0.0)),
		validation.Field(&st.Opacity, validation.Min(0.0), validation.Max(1.0)),
	)
}
