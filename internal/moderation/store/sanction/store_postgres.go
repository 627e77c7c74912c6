package sanction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commune/internal/moderation/models"
	"commune/internal/moderation/store/pgxtx"
	id "commune/pkg/domain"
)

// PostgresStore implements ports.SanctionStore on pgx.
//
// Schema note: the conditional create relies on a partial unique index,
//
//	CREATE UNIQUE INDEX sanctions_one_active
//	ON sanctions (target_type, target_id, sanction_type)
//	WHERE status = 'active';
//
// so concurrent transactions cannot both insert an Active sanction even if
// both passed the read check.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) q(ctx context.Context) pgxtx.Querier {
	return pgxtx.QuerierFrom(ctx, s.pool)
}

func (s *PostgresStore) CreateIfNoneActive(ctx context.Context, sanction models.Sanction) (bool, error) {
	query := `
		INSERT INTO sanctions (
			id, territory_id, target_type, target_id,
			sanction_type, status, starts_at, ends_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (target_type, target_id, sanction_type) WHERE status = 'active'
		DO NOTHING
	`
	tag, err := s.q(ctx).Exec(ctx, query,
		uuid.UUID(sanction.ID), uuid.UUID(sanction.TerritoryID),
		sanction.Target.Type.String(), sanction.Target.ID,
		string(sanction.Type), string(sanction.Status),
		sanction.StartsAt, sanction.EndsAt,
	)
	if err != nil {
		return false, fmt.Errorf("create sanction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) FindActive(ctx context.Context, target models.Target, sanctionType models.SanctionType) (*models.Sanction, error) {
	query := `
		SELECT id, territory_id, target_type, target_id,
		       sanction_type, status, starts_at, ends_at
		FROM sanctions
		WHERE target_type = $1 AND target_id = $2
		  AND sanction_type = $3 AND status = 'active'
	`
	row := s.q(ctx).QueryRow(ctx, query, target.Type.String(), target.ID, string(sanctionType))

	var (
		out         models.Sanction
		sanctionID  uuid.UUID
		territoryID uuid.UUID
		targetType  string
		sType       string
		status      string
	)
	err := row.Scan(
		&sanctionID, &territoryID, &targetType, &out.Target.ID,
		&sType, &status, &out.StartsAt, &out.EndsAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active sanction: %w", err)
	}
	out.ID = id.SanctionID(sanctionID)
	out.TerritoryID = id.TerritoryID(territoryID)
	out.Target.Type = models.TargetType(targetType)
	out.Type = models.SanctionType(sType)
	out.Status = models.SanctionStatus(status)
	return &out, nil
}
