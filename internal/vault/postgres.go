package vault

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// PostgresStore reads one user's vault from the content_items table
type PostgresStore struct {
	pool   *pgxpool.Pool
	userID uuid.UUID
}

// Connect establishes a connection pool scoped to userID
func Connect(ctx context.Context, databaseURL string, userID uuid.UUID) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &Error{Source: "postgres", Message: "failed to connect to database", Cause: err}
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &Error{Source: "postgres", Message: "failed to ping database", Cause: err}
	}

	return &PostgresStore{pool: pool, userID: userID}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// listQuery builds the SELECT for a filter. Tag matching is
// case-insensitive, as in Filter.Matches.
func listQuery(userID uuid.UUID, filter *Filter) (string, []any) {
	query := `SELECT id, type, content, tags, metadata, parent_id
		FROM content_items
		WHERE user_id = $1`
	args := []any{userID}

	if filter != nil {
		if len(filter.Types) > 0 {
			contentTypes := make([]string, len(filter.Types))
			for i, t := range filter.Types {
				contentTypes[i] = string(t)
			}
			args = append(args, contentTypes)
			query += fmt.Sprintf(" AND type = ANY($%d)", len(args))
		}
		if len(filter.Tags) > 0 {
			args = append(args, filter.Tags)
			query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM unnest(tags) t, unnest($%d::text[]) f WHERE lower(t) = lower(f))`, len(args))
		}
		if filter.ParentID != "" {
			args = append(args, filter.ParentID)
			query += fmt.Sprintf(" AND parent_id = $%d", len(args))
		}
	}

	query += " ORDER BY position, id"
	return query, args
}

// ListContentItems returns the user's items matching filter in vault order
func (s *PostgresStore) ListContentItems(ctx context.Context, filter *Filter) ([]types.ContentItem, error) {
	query, args := listQuery(s.userID, filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &Error{Source: "postgres", Message: "failed to list content items", Cause: err}
	}
	defer rows.Close()

	items := []types.ContentItem{}
	for rows.Next() {
		var item types.ContentItem
		var contentType string
		var metadata []byte
		var parentID *string
		if err := rows.Scan(&item.ID, &contentType, &item.Content, &item.Tags, &metadata, &parentID); err != nil {
			return nil, &Error{Source: "postgres", Message: "failed to scan content item", Cause: err}
		}
		item.Type = types.ContentType(contentType)
		if parentID != nil {
			item.ParentID = *parentID
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, &Error{Source: "postgres", Message: fmt.Sprintf("invalid metadata for item %s", item.ID), Cause: err}
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Source: "postgres", Message: "failed to iterate content items", Cause: err}
	}
	return items, nil
}

// ImportContentItems upserts items for the user in one transaction,
// keeping their order
func (s *PostgresStore) ImportContentItems(ctx context.Context, items []types.ContentItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &Error{Source: "postgres", Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, item := range items {
		var metadata []byte
		if item.Metadata != nil {
			if metadata, err = json.Marshal(item.Metadata); err != nil {
				return &Error{Source: "postgres", Message: fmt.Sprintf("failed to marshal metadata for item %s", item.ID), Cause: err}
			}
		}
		var parentID *string
		if item.ParentID != "" {
			parentID = &item.ParentID
		}
		tags := item.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(
			`INSERT INTO content_items (user_id, id, type, content, tags, metadata, parent_id, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (user_id, id) DO UPDATE SET
				type = $3, content = $4, tags = $5, metadata = $6, parent_id = $7, position = $8`,
			s.userID, item.ID, string(item.Type), item.Content, tags, metadata, parentID, i,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return &Error{Source: "postgres", Message: "failed to import content items", Cause: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &Error{Source: "postgres", Message: "failed to commit import", Cause: err}
	}
	return nil
}

// Schema creates the content_items table if it does not exist
const Schema = `CREATE TABLE IF NOT EXISTS content_items (
	user_id   UUID NOT NULL,
	id        TEXT NOT NULL,
	type      TEXT NOT NULL,
	content   TEXT NOT NULL,
	tags      TEXT[] NOT NULL DEFAULT '{}',
	metadata  JSONB,
	parent_id TEXT,
	position  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, id)
)`

// EnsureSchema applies Schema
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return &Error{Source: "postgres", Message: "failed to create content_items table", Cause: err}
	}
	return nil
}
