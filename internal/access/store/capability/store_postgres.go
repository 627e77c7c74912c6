package capability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"commune/internal/access/models"
	id "commune/pkg/domain"
)

// PostgresStore reads the membership grant tables. The evaluator only reads;
// membership management owns the writes and emits revocation events.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListCapabilities(ctx context.Context, subject id.UserID, territory id.TerritoryID) ([]models.Capability, error) {
	query := `
		SELECT capability
		FROM capability_grants
		WHERE subject_id = $1 AND territory_id = $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(subject), uuid.UUID(territory))
	if err != nil {
		return nil, fmt.Errorf("list capabilities: %w", err)
	}
	defer rows.Close()

	var out []models.Capability
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan capability: %w", err)
		}
		capability, err := models.ParseCapability(raw)
		if err != nil {
			// Unknown capability rows cannot grant anything this core
			// understands; skip rather than fail the whole check.
			continue
		}
		out = append(out, capability)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSystemPermissions(ctx context.Context, subject id.UserID) ([]models.SystemPermission, error) {
	query := `
		SELECT permission
		FROM system_permission_grants
		WHERE subject_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(subject))
	if err != nil {
		return nil, fmt.Errorf("list system permissions: %w", err)
	}
	defer rows.Close()

	var out []models.SystemPermission
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan system permission: %w", err)
		}
		permission, err := models.ParseSystemPermission(raw)
		if err != nil {
			continue
		}
		out = append(out, permission)
	}
	return out, rows.Err()
}
