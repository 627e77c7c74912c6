package audit

import (
	"context"

	id "commune/pkg/domain"
)

// Store persists audit events. Implementations must be append-only; events
// are never mutated or deleted by the core.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]Event, error)
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
}
