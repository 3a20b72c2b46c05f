package mdf

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProjectNotFound  = errors.New("mdf: project not found")
	ErrShareNotFound    = errors.New("mdf: share not found")
	ErrConnectionDenied = errors.New("mdf: connection denied")
	ErrLayoutRunning    = errors.New("mdf: layout already running")
)

// Project is a saved diagram: a graph plus the profile it was built against.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProfileID string    `json:"profile_id,omitempty"`
	Graph     Graph     `json:"graph"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Share is a read-only snapshot of a project published under an opaque id.
type Share struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Graph     Graph     `json:"graphData"`
	ProfileID string    `json:"profile,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store defines the contract for persisting and retrieving projects and
// their share snapshots.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Projects
	SaveProject(ctx context.Context, p *Project) (*Project, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	// Shares
	CreateShare(ctx context.Context, projectID string) (*Share, error)
	GetShare(ctx context.Context, shareID string) (*Share, error)
}
