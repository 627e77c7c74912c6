// Package adapters implements the moderation module's outbound ports against
// the tables the Feed and Users modules own.
package adapters

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"commune/internal/moderation/models"
	"commune/internal/moderation/store/pgxtx"
	id "commune/pkg/domain"
)

// PostgresTargetLookup answers target existence against the owning tables.
type PostgresTargetLookup struct {
	pool *pgxpool.Pool
}

func NewPostgresTargetLookup(pool *pgxpool.Pool) *PostgresTargetLookup {
	return &PostgresTargetLookup{pool: pool}
}

// TargetExists checks the target inside its territory: posts live in the
// territory directly, users through their membership row.
func (l *PostgresTargetLookup) TargetExists(ctx context.Context, target models.Target, territory id.TerritoryID) (bool, error) {
	q := pgxtx.QuerierFrom(ctx, l.pool)

	var query string
	switch target.Type {
	case models.TargetPost:
		query = `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1 AND territory_id = $2)`
	case models.TargetUser:
		query = `SELECT EXISTS (SELECT 1 FROM territory_members WHERE user_id = $1 AND territory_id = $2)`
	default:
		return false, fmt.Errorf("unknown target type %q", target.Type)
	}

	var exists bool
	if err := q.QueryRow(ctx, query, target.ID, territory.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check target existence: %w", err)
	}
	return exists, nil
}

// PostgresContentModeration hides posts in the Feed module's tables.
type PostgresContentModeration struct {
	pool *pgxpool.Pool
}

func NewPostgresContentModeration(pool *pgxpool.Pool) *PostgresContentModeration {
	return &PostgresContentModeration{pool: pool}
}

// HidePost hides the post if it is still visible and cascade-deletes its
// attached media. The conditional UPDATE is the idempotency signal: zero rows
// affected means another crossing already acted.
func (c *PostgresContentModeration) HidePost(ctx context.Context, postID id.PostID) (bool, error) {
	q := pgxtx.QuerierFrom(ctx, c.pool)

	tag, err := q.Exec(ctx,
		`UPDATE posts SET hidden = TRUE, hidden_at = NOW() WHERE id = $1 AND hidden = FALSE`,
		postID.String(),
	)
	if err != nil {
		return false, fmt.Errorf("hide post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := q.Exec(ctx, `DELETE FROM post_media WHERE post_id = $1`, postID.String()); err != nil {
		return false, fmt.Errorf("delete post media: %w", err)
	}
	return true, nil
}
