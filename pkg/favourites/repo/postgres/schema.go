package postgres

import (
	"context"
	"fmt"
)

// Schema holds the DDL for the favourites schema in execution order. It is
// exported so callers can feed it to their own migration tooling; Setup runs
// it directly for tests and small deployments.
var Schema = []string{
	`CREATE SCHEMA IF NOT EXISTS favourites`,

	`CREATE TABLE IF NOT EXISTS favourites.list (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		creator_id UUID NOT NULL,
		created TIMESTAMP NOT NULL DEFAULT (now() AT TIME ZONE 'utc'),
		modified TIMESTAMP NOT NULL DEFAULT (now() AT TIME ZONE 'utc')
	)`,

	`CREATE TABLE IF NOT EXISTS favourites.list_member (
		list_id UUID NOT NULL REFERENCES favourites.list(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		role VARCHAR(16) NOT NULL,
		CONSTRAINT list_member_unique UNIQUE (list_id, user_id, role),
		CONSTRAINT list_member_role_check CHECK (role IN ('owner', 'editor', 'viewer'))
	)`,

	`CREATE TABLE IF NOT EXISTS favourites.list_kind (
		list_id UUID NOT NULL REFERENCES favourites.list(id) ON DELETE CASCADE,
		kind VARCHAR(100) NOT NULL,
		CONSTRAINT list_kind_unique UNIQUE (list_id, kind)
	)`,

	`CREATE TABLE IF NOT EXISTS favourites.item (
		id UUID PRIMARY KEY,
		list_id UUID NOT NULL REFERENCES favourites.list(id) ON DELETE CASCADE,
		kind VARCHAR(100) NOT NULL,
		object_id VARCHAR(255) NOT NULL,
		importance DOUBLE PRECISION NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		added_by UUID NOT NULL,
		created TIMESTAMP NOT NULL DEFAULT (now() AT TIME ZONE 'utc'),
		CONSTRAINT item_unique_in_list UNIQUE (kind, object_id, list_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_list_member_user ON favourites.list_member(user_id, role)`,
	`CREATE INDEX IF NOT EXISTS idx_item_list ON favourites.item(list_id)`,
	`CREATE INDEX IF NOT EXISTS idx_item_ref ON favourites.item(kind, object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_list_creator ON favourites.list(creator_id)`,
}

// Setup creates the favourites schema and tables if they do not exist.
func Setup(ctx context.Context, db DBTX) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
