package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
)

// SaveProject upserts a project. The graph is sanitized before persistence
// so dangling edges never reach storage. A project without an ID gets an
// auto-generated UUID. Returns the project with IDs and timestamps filled.
func (s *PGStore) SaveProject(ctx context.Context, p *mdf.Project) (*mdf.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Graph = mdf.Sanitize(p.Graph)

	payload, err := json.Marshal(p.Graph)
	if err != nil {
		return nil, fmt.Errorf("mdf: marshal graph: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO mdf_projects (id, name, profile_id, graph)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, profile_id = EXCLUDED.profile_id,
		    graph = EXCLUDED.graph, updated_at = NOW()
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.ProfileID, payload,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("mdf: save project %s: %w", p.ID, err)
	}
	return p, nil
}

// GetProject fetches a project by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetProject(ctx context.Context, projectID string) (*mdf.Project, error) {
	var (
		p       mdf.Project
		payload []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, name, profile_id, graph, created_at, updated_at
		FROM mdf_projects WHERE id = $1`, projectID,
	).Scan(&p.ID, &p.Name, &p.ProfileID, &payload, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mdf: get project: %w", err)
	}
	if err := json.Unmarshal(payload, &p.Graph); err != nil {
		return nil, fmt.Errorf("mdf: unmarshal graph: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects ordered by updated_at, newest first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListProjects(ctx context.Context) ([]mdf.Project, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, profile_id, graph, created_at, updated_at
		FROM mdf_projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("mdf: list projects: %w", err)
	}
	defer rows.Close()

	projects := []mdf.Project{}
	for rows.Next() {
		var (
			p       mdf.Project
			payload []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ProfileID, &payload, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("mdf: scan project: %w", err)
		}
		if err := json.Unmarshal(payload, &p.Graph); err != nil {
			return nil, fmt.Errorf("mdf: unmarshal graph: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mdf: rows projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and, via cascade, its shares.
// No error if the projectID doesn't exist.
func (s *PGStore) DeleteProject(ctx context.Context, projectID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM mdf_projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("mdf: delete project: %w", err)
	}
	return nil
}
