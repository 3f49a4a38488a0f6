package scene

import (
	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
)

// layout runs a geometry function over the selected images in selection
// order and writes the resulting frames back as one command.
func (s *Store) layout(label string, fn func([]engine.Frame) ([]engine.Frame, error)) (apperr.Outcome, error) {
	return s.mutate(label, func(sc *document.Scene) error {
		frames := make([]engine.Frame, 0, len(s.selection.Images))
		for _, id := range s.selection.Images {
			frames = append(frames, engine.FrameOf(sc.Images[id]))
		}
		out, err := fn(frames)
		if err != nil {
			return err
		}
		for _, f := range out {
			img := sc.Images[f.ID]
			f.ApplyTo(&img)
			sc.Images[f.ID] = img
		}
		return nil
	})
}

func (s *Store) Align(mode engine.AlignMode) (apperr.Outcome, error) {
	return s.layout("align "+string(mode), func(f []engine.Frame) ([]engine.Frame, error) {
		return engine.Align(f, mode)
	})
}

func (s *Store) Arrange(dir engine.Direction, order engine.Order) (apperr.Outcome, error) {
	return s.layout("arrange "+string(dir), func(f []engine.Frame) ([]engine.Frame, error) {
		return engine.Arrange(f, dir, order)
	})
}

func (s *Store) Stack(dir engine.Direction, order engine.Order) (apperr.Outcome, error) {
	return s.layout("stack "+string(dir), func(f []engine.Frame) ([]engine.Frame, error) {
		return engine.Stack(f, dir, order)
	})
}

func (s *Store) Distribute(dir engine.Direction) (apperr.Outcome, error) {
	return s.layout("distribute "+string(dir), func(f []engine.Frame) ([]engine.Frame, error) {
		return engine.Distribute(f, dir)
	})
}

// MatchSize scales the selected images so their width or height matches the
// first selected image.
func (s *Store) MatchSize(dim engine.Dimension) (apperr.Outcome, error) {
	return s.layout("match "+string(dim), func(f []engine.Frame) ([]engine.Frame, error) {
		return engine.MatchSize(f, dim)
	})
}
