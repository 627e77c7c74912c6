package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commune/internal/moderation/models"
	"commune/internal/moderation/store/pgxtx"
	id "commune/pkg/domain"
)

// PostgresStore implements ports.ReportStore on pgx. Queries join the
// caller's transaction when pgxtx carries one.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) q(ctx context.Context) pgxtx.Querier {
	return pgxtx.QuerierFrom(ctx, s.pool)
}

func (s *PostgresStore) FindRecentByReporter(ctx context.Context, reporter id.UserID, target models.Target, since time.Time) (*models.Report, error) {
	query := `
		SELECT id, reporter_id, territory_id, target_type, target_id,
		       reason, details, status, created_at
		FROM moderation_reports
		WHERE reporter_id = $1 AND target_type = $2 AND target_id = $3
		  AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := s.q(ctx).QueryRow(ctx, query, uuid.UUID(reporter), target.Type.String(), target.ID, since)
	report, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recent report: %w", err)
	}
	return report, nil
}

func (s *PostgresStore) Insert(ctx context.Context, report models.Report) error {
	query := `
		INSERT INTO moderation_reports (
			id, reporter_id, territory_id, target_type, target_id,
			reason, details, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.q(ctx).Exec(ctx, query,
		uuid.UUID(report.ID), uuid.UUID(report.ReporterID), uuid.UUID(report.TerritoryID),
		report.Target.Type.String(), report.Target.ID,
		report.Reason.String(), report.Details, string(report.Status), report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountDistinctReporters(ctx context.Context, target models.Target, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT reporter_id)
		FROM moderation_reports
		WHERE target_type = $1 AND target_id = $2 AND created_at >= $3
	`
	var count int
	if err := s.q(ctx).QueryRow(ctx, query, target.Type.String(), target.ID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count distinct reporters: %w", err)
	}
	return count, nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var (
		r           models.Report
		reportID    uuid.UUID
		reporterID  uuid.UUID
		territoryID uuid.UUID
		targetType  string
		reason      string
		status      string
	)
	if err := row.Scan(
		&reportID, &reporterID, &territoryID, &targetType, &r.Target.ID,
		&reason, &r.Details, &status, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.ID = id.ReportID(reportID)
	r.ReporterID = id.UserID(reporterID)
	r.TerritoryID = id.TerritoryID(territoryID)
	r.Target.Type = models.TargetType(targetType)
	r.Reason = models.ReportReason(reason)
	r.Status = models.ReportStatus(status)
	return &r, nil
}
