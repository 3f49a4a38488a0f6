package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/pinboard/internal/db"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *db.Queries
}

func NewService(queries *db.Queries) *Service {
	return &Service{queries: queries}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type SnapshotInfo struct {
	ID        string `json:"id"`
	Version   int32  `json:"version"`
	CreatedAt string `json:"createdAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	dbProj, err := s.queries.CreateProject(ctx, db.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	docJSON, err := json.Marshal(document.NewEmptyScene())
	if err != nil {
		return nil, fmt.Errorf("marshal empty scene: %w", err)
	}
	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	p, err := s.owned(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return toProject(p), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.queries.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *toProject(p)
	}
	return projects, nil
}

func (s *Service) Rename(ctx context.Context, projectID, userID, name string) error {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return err
	}
	return s.queries.RenameProject(ctx, projectID, name)
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return err
	}
	return s.queries.DeleteProject(ctx, projectID)
}

// CheckAccess reports whether userID may open the project's editor session.
func (s *Service) CheckAccess(ctx context.Context, projectID, userID string) error {
	_, err := s.owned(ctx, projectID, userID)
	return err
}

func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.queries.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

func (s *Service) ListSnapshots(ctx context.Context, projectID, userID string, limit int32) ([]SnapshotInfo, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snaps, err := s.queries.ListSnapshots(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]SnapshotInfo, len(snaps))
	for i, sn := range snaps {
		out[i] = SnapshotInfo{ID: sn.ID, Version: sn.Version, CreatedAt: sn.CreatedAt.Time.Format(time.RFC3339)}
	}
	return out, nil
}

// LoadScene returns the latest persisted scene for the editor hub.
func (s *Service) LoadScene(ctx context.Context, projectID string) (*document.Scene, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	sc := document.NewEmptyScene()
	if err := json.Unmarshal(snap.Document, sc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	sc.Normalize()
	return sc, nil
}

// SaveScene appends a new snapshot version for the project.
func (s *Service) SaveScene(ctx context.Context, projectID string, sc *document.Scene) error {
	docJSON, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}

	var version int32 = 1
	latest, err := s.queries.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		version = latest.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("get snapshot: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   version,
		Document:  docJSON,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return s.queries.TouchProject(ctx, projectID)
}

func (s *Service) owned(ctx context.Context, projectID, userID string) (db.Project, error) {
	p, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("get project: %w", err)
	}
	if p.OwnerID != userID {
		return p, ErrForbidden
	}
	return p, nil
}

func toProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.Time.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Time.Format(time.RFC3339),
	}
}
