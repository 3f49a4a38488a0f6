package collab

import (
	"context"
	"errors"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/command"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/scene"
)

// Repository loads and persists project scenes.
type Repository interface {
	LoadScene(ctx context.Context, projectID string) (*document.Scene, error)
	SaveScene(ctx context.Context, projectID string, sc *document.Scene) error
}

// session is the authoritative editor state of one open project. It is only
// touched from the hub goroutine.
type session struct {
	projectID   string
	store       *scene.Store
	clients     map[string]*Client
	serverSeq   int64
	savedRev    uint64
	unsubscribe func()
}

func (s *session) dirty() bool {
	return s.store.Revision() != s.savedRev
}

func (s *session) save(ctx context.Context, repo Repository) error {
	if !s.dirty() {
		return nil
	}
	rev := s.store.Revision()
	if err := repo.SaveScene(ctx, s.projectID, s.store.Document()); err != nil {
		return err
	}
	s.savedRev = rev
	return nil
}

// apply runs one operation against the session's store.
func (s *session) apply(op command.Operation) (command.Result, error) {
	res, err := command.Apply(s.store, op)
	if err != nil {
		return res, err
	}
	s.serverSeq++
	return res, nil
}

func nackCode(err error) string {
	if errors.Is(err, command.ErrInvalidOperation) {
		return "invalid_operation"
	}
	return apperr.Code(err)
}
