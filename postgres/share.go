package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
)

// CreateShare snapshots the current state of a project under a fresh
// opaque share id. The snapshot is immutable: later edits to the project
// do not change what the share serves.
func (s *PGStore) CreateShare(ctx context.Context, projectID string) (*mdf.Share, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, mdf.ErrProjectNotFound
	}

	share := &mdf.Share{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Graph:     p.Graph,
		ProfileID: p.ProfileID,
	}
	payload, err := json.Marshal(share.Graph)
	if err != nil {
		return nil, fmt.Errorf("mdf: marshal share graph: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO mdf_shares (id, project_id, profile_id, graph)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		share.ID, share.ProjectID, share.ProfileID, payload,
	).Scan(&share.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("mdf: create share: %w", err)
	}
	return share, nil
}

// GetShare fetches a share snapshot by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetShare(ctx context.Context, shareID string) (*mdf.Share, error) {
	var (
		share   mdf.Share
		payload []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, project_id, profile_id, graph, created_at
		FROM mdf_shares WHERE id = $1`, shareID,
	).Scan(&share.ID, &share.ProjectID, &share.ProfileID, &payload, &share.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mdf: get share: %w", err)
	}
	if err := json.Unmarshal(payload, &share.Graph); err != nil {
		return nil, fmt.Errorf("mdf: unmarshal share graph: %w", err)
	}
	return &share, nil
}
