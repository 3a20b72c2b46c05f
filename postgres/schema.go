package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mdf_projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    profile_id TEXT NOT NULL DEFAULT '',
    graph      JSONB NOT NULL DEFAULT '{"nodes":[],"edges":[]}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS mdf_shares (
    id         TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES mdf_projects(id) ON DELETE CASCADE,
    profile_id TEXT NOT NULL DEFAULT '',
    graph      JSONB NOT NULL DEFAULT '{"nodes":[],"edges":[]}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mdf_shares_project ON mdf_shares(project_id);
`

// CreateSchema creates the project and share tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the share and project tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS mdf_shares, mdf_projects CASCADE;`)
	return err
}
