package db

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   pgtype.Timestamptz
}

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Snapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
	CreatedAt pgtype.Timestamptz
}

const createUser = `
INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName)
	return scanUser(row)
}

const getUserByEmail = `
SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `
SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const createProject = `
INSERT INTO projects (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	return scanProject(q.db.QueryRow(ctx, createProject, arg.ID, arg.Name, arg.OwnerID))
}

const getProject = `
SELECT id, name, owner_id, created_at, updated_at FROM projects WHERE id = $1`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	return scanProject(q.db.QueryRow(ctx, getProject, id))
}

const listProjectsForUser = `
SELECT id, name, owner_id, created_at, updated_at FROM projects
WHERE owner_id = $1
ORDER BY updated_at DESC`

func (q *Queries) ListProjectsForUser(ctx context.Context, ownerID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsForUser, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Project, error) {
		return scanProject(r)
	})
}

const renameProject = `
UPDATE projects SET name = $2, updated_at = now() WHERE id = $1`

func (q *Queries) RenameProject(ctx context.Context, id, name string) error {
	_, err := q.db.Exec(ctx, renameProject, id, name)
	return err
}

const touchProject = `UPDATE projects SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchProject, id)
	return err
}

const deleteProject = `DELETE FROM projects WHERE id = $1`

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteProject, id)
	return err
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createSnapshot = `
INSERT INTO snapshots (id, project_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, version, document, created_at`

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.ProjectID, arg.Version, []byte(arg.Document))
	return scanSnapshot(row)
}

const getLatestSnapshot = `
SELECT id, project_id, version, document, created_at FROM snapshots
WHERE project_id = $1
ORDER BY version DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	return scanSnapshot(q.db.QueryRow(ctx, getLatestSnapshot, projectID))
}

const listSnapshots = `
SELECT id, project_id, version, document, created_at FROM snapshots
WHERE project_id = $1
ORDER BY version DESC
LIMIT $2`

func (q *Queries) ListSnapshots(ctx context.Context, projectID string, limit int32) ([]Snapshot, error) {
	rows, err := q.db.Query(ctx, listSnapshots, projectID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Snapshot, error) {
		return scanSnapshot(r)
	})
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	var doc []byte
	err := row.Scan(&s.ID, &s.ProjectID, &s.Version, &doc, &s.CreatedAt)
	s.Document = doc
	return s, err
}
