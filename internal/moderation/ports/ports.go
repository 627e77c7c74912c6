// Package ports defines the collaborator interfaces the moderation module
// consumes.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"commune/internal/moderation/models"
	id "commune/pkg/domain"
	"commune/pkg/platform/audit"
)

// ReportStore persists counted reports and answers the two window queries the
// threshold engine needs.
type ReportStore interface {
	// FindRecentByReporter returns the reporter's counted report against the
	// target created at or after 'since', or nil when none exists.
	FindRecentByReporter(ctx context.Context, reporter id.UserID, target models.Target, since time.Time) (*models.Report, error)

	// Insert persists a new counted report.
	Insert(ctx context.Context, report models.Report) error

	// CountDistinctReporters counts unique reporter IDs against the target
	// since the given time. Distinct reporters, not rows: one reporter can
	// never cross the threshold alone.
	CountDistinctReporters(ctx context.Context, target models.Target, since time.Time) (int, error)
}

// SanctionStore persists sanctions. The conditional create is the concurrency
// guard: two concurrent threshold crossings must produce one sanction.
type SanctionStore interface {
	// CreateIfNoneActive inserts the sanction unless an Active sanction of
	// the same type already exists for the target. Returns whether the
	// insert happened.
	CreateIfNoneActive(ctx context.Context, sanction models.Sanction) (bool, error)

	// FindActive returns the Active sanction of the given type for the
	// target, or nil.
	FindActive(ctx context.Context, target models.Target, sanctionType models.SanctionType) (*models.Sanction, error)
}

// TargetLookup asks the owning module (Feed for posts, Users for accounts)
// whether the target exists in the territory. Not retried by this core.
type TargetLookup interface {
	TargetExists(ctx context.Context, target models.Target, territory id.TerritoryID) (bool, error)
}

// ContentModeration is the Feed module's moderation surface. HidePost hides
// the post and cascade-deletes its attached media on the owning side.
type ContentModeration interface {
	// HidePost hides the post if it is currently visible. Returns false when
	// the post was already hidden (the idempotency signal for the threshold
	// engine).
	HidePost(ctx context.Context, postID id.PostID) (bool, error)
}

// TxRunner executes fn atomically: either every state change inside commits,
// or none persist. The count-guard-act sequence runs under it so two
// concurrent threshold-crossing reports cannot both act.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher produces domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// AuditPublisher emits audit events for report intake and auto-actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
