package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"commune/internal/access/models"
	id "commune/pkg/domain"
)

// PostgresStore derives a subject's pending policies from the published
// mandatory policies that have no acceptance record for the subject.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetPendingPolicies(ctx context.Context, subject id.UserID) (models.PendingPolicies, error) {
	query := `
		SELECT p.id, p.kind
		FROM policies p
		WHERE p.mandatory
		  AND p.published_at IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM policy_acceptances a
			WHERE a.policy_id = p.id AND a.subject_id = $1
		  )
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(subject))
	if err != nil {
		return models.PendingPolicies{}, fmt.Errorf("get pending policies: %w", err)
	}
	defer rows.Close()

	var pending models.PendingPolicies
	for rows.Next() {
		var (
			policyID uuid.UUID
			kind     string
		)
		if err := rows.Scan(&policyID, &kind); err != nil {
			return models.PendingPolicies{}, fmt.Errorf("scan pending policy: %w", err)
		}
		switch PolicyKind(kind) {
		case KindTerms:
			pending.RequiredTerms = append(pending.RequiredTerms, id.PolicyID(policyID))
		case KindPrivacy:
			pending.RequiredPrivacyPolicies = append(pending.RequiredPrivacyPolicies, id.PolicyID(policyID))
		}
	}
	return pending, rows.Err()
}
