// Package postgres persists audit events in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "commune/pkg/domain"
	"commune/pkg/platform/audit"
	txcontext "commune/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL. When the caller runs inside a
// transaction (pkg/platform/tx), the append joins it so audit rows commit and
// roll back with the operation they describe.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, occurred_at, action, actor_id, territory_id,
			target_type, target_id, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var actorID, territoryID any
	if !event.ActorID.IsNil() {
		actorID = uuid.UUID(event.ActorID)
	}
	if !event.TerritoryID.IsNil() {
		territoryID = uuid.UUID(event.TerritoryID)
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(), ts, event.Action, actorID, territoryID,
		event.TargetType, event.TargetID, event.Decision, event.Reason, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByTarget returns events for one target, oldest first.
func (s *Store) ListByTarget(ctx context.Context, targetType, targetID string) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, action, actor_id, territory_id,
		       target_type, target_id, decision, reason, request_id
		FROM audit_events
		WHERE target_type = $1 AND target_id = $2
		ORDER BY occurred_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("list audit events by target: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByActor returns events recorded for one actor, oldest first.
func (s *Store) ListByActor(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, action, actor_id, territory_id,
		       target_type, target_id, decision, reason, request_id
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("list audit events by actor: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var out []audit.Event
	for rows.Next() {
		var (
			e           audit.Event
			actorID     uuid.NullUUID
			territoryID uuid.NullUUID
		)
		if err := rows.Scan(
			&e.Timestamp, &e.Action, &actorID, &territoryID,
			&e.TargetType, &e.TargetID, &e.Decision, &e.Reason, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if actorID.Valid {
			e.ActorID = id.UserID(actorID.UUID)
		}
		if territoryID.Valid {
			e.TerritoryID = id.TerritoryID(territoryID.UUID)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
