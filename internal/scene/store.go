// Package scene holds the Store, the single owner of a canvas scene. Every
// mutation runs against a draft copy, is validated, and is then swapped in and
// recorded as exactly one history entry. Failed operations leave the scene and
// the history untouched.
//
// A Store is not safe for concurrent use; callers serialize access.
package scene

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/history"
	"github.com/inamate/pinboard/internal/typeid"
)

// DefaultHistoryLimit is the number of undo steps kept when no limit is configured.
const DefaultHistoryLimit = 200

// Snapshot is the read-only view handed to renderers and observers.
type Snapshot struct {
	Scene     *document.Scene `json:"scene"`
	Selection Selection       `json:"selection"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
	UndoLabel string          `json:"undoLabel,omitempty"`
	RedoLabel string          `json:"redoLabel,omitempty"`
	Revision  uint64          `json:"revision"`
}

type Store struct {
	scene     *document.Scene
	selection Selection
	history   *history.History[*document.Scene]
	revision  uint64

	observers map[int]func(Snapshot)
	nextObs   int

	newID   func(prefix string) string
	now     func() time.Time
	cropper Cropper
	logger  *slog.Logger
	limit   int
}

type Option func(*Store)

func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithIDGenerator replaces the TypeID generator used for new entities.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithCropper sets the collaborator that extracts cropped bitmaps.
func WithCropper(c Cropper) Option {
	return func(s *Store) { s.cropper = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store holding an empty scene.
func New(opts ...Option) *Store {
	s := &Store{
		scene:     document.NewEmptyScene(),
		observers: make(map[int]func(Snapshot)),
		newID:     typeid.New,
		now:       time.Now,
		logger:    slog.Default(),
		limit:     DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.New[*document.Scene](s.limit)
	return s
}

// Load replaces the scene with sc after validating it. History and selection
// are reset.
func (s *Store) Load(sc *document.Scene) error {
	next := sc.Clone()
	next.Normalize()
	if err := next.Validate(); err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	s.scene = next
	s.selection = Selection{}
	s.history.Clear()
	s.revision++
	s.logger.Debug("scene loaded", "images", len(next.Images), "groups", len(next.Groups))
	s.notify()
	return nil
}

// Document returns a copy of the scene in its canonical value form.
func (s *Store) Document() *document.Scene {
	return s.scene.Clone()
}

// Revision increases every time the scene or the selection changes.
func (s *Store) Revision() uint64 {
	return s.revision
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Scene:     s.scene.Clone(),
		Selection: s.selection.clone(),
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		UndoLabel: s.history.UndoLabel(),
		RedoLabel: s.history.RedoLabel(),
		Revision:  s.revision,
	}
}

func (s *Store) CanUndo() bool { return s.history.CanUndo() }
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// HistoryLabels lists the recorded command labels, oldest first.
func (s *Store) HistoryLabels() []string { return s.history.Labels() }

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Store) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

// Undo restores the scene as it was before the most recent recorded command.
func (s *Store) Undo() apperr.Outcome {
	e, ok := s.history.Undo()
	if !ok {
		return apperr.NoOp
	}
	s.restore(e.Before)
	s.logger.Debug("undo", "command", e.Label)
	s.notify()
	return apperr.Applied
}

// Redo re-applies the most recently undone command.
func (s *Store) Redo() apperr.Outcome {
	e, ok := s.history.Redo()
	if !ok {
		return apperr.NoOp
	}
	s.restore(e.After)
	s.logger.Debug("redo", "command", e.Label)
	s.notify()
	return apperr.Applied
}

// restore swaps in a recorded scene. Selected images renamed by a crop or
// uncrop stay selected under their other id.
func (s *Store) restore(sc *document.Scene) {
	s.selection.remap(lineageRenames(s.scene, sc))
	s.scene = sc
	s.selection = s.selection.prune(sc)
	s.revision++
}

// mutate runs fn against a draft of the scene. See apply.
func (s *Store) mutate(label string, fn func(sc *document.Scene) error) (apperr.Outcome, error) {
	return s.apply(label, func(sc *document.Scene, _ *Selection) error { return fn(sc) })
}

// apply is the only path that changes the scene. fn edits drafts of the scene
// and the selection; on error both drafts are discarded. A draft scene equal
// to the current one is a NoOp and is not recorded.
func (s *Store) apply(label string, fn func(sc *document.Scene, sel *Selection) error) (apperr.Outcome, error) {
	next := s.scene.Clone()
	sel := s.selection.clone()
	if err := fn(next, &sel); err != nil {
		return apperr.NoOp, fmt.Errorf("%s: %w", label, err)
	}
	next.Normalize()
	if err := next.Validate(); err != nil {
		return apperr.NoOp, fmt.Errorf("%s: %w", label, err)
	}
	if reflect.DeepEqual(next, s.scene) {
		return apperr.NoOp, nil
	}

	s.history.Record(history.Entry[*document.Scene]{Label: label, Before: s.scene, After: next})
	s.scene = next
	s.selection = sel.prune(next)
	s.revision++
	s.logger.Debug("command applied", "command", label, "history", s.history.Cursor())
	s.notify()
	return apperr.Applied, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrEntityNotFound)
}
