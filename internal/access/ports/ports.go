// Package ports defines the collaborator interfaces the access module
// consumes. Interfaces live here, next to the consumer, so store packages and
// fakes implement them without import cycles.
package ports

import (
	"context"
	"time"

	"commune/internal/access/models"
	id "commune/pkg/domain"
	"commune/pkg/platform/audit"
)

// CapabilityStore is the read model owned by membership management. Pure
// reads; the evaluator never writes grants.
type CapabilityStore interface {
	// ListCapabilities returns the subject's capabilities in one territory.
	ListCapabilities(ctx context.Context, subject id.UserID, territory id.TerritoryID) ([]models.Capability, error)

	// ListSystemPermissions returns the subject's platform-wide permissions.
	ListSystemPermissions(ctx context.Context, subject id.UserID) ([]models.SystemPermission, error)
}

// PolicyStore reports which mandatory policies a subject still has to accept.
// "Required" is defined by policy-publication state, owned elsewhere.
type PolicyStore interface {
	GetPendingPolicies(ctx context.Context, subject id.UserID) (models.PendingPolicies, error)
}

// DecisionCache stores computed allow/deny decisions. Writes are
// last-writer-wins overwrites of an idempotent boolean; no key-level locking.
// Set also records the key in the subject's index so a revocation can evict
// every decision for that subject.
type DecisionCache interface {
	// Get returns the cached decision and whether the key was present.
	Get(ctx context.Context, key string) (allowed bool, found bool, err error)

	// Set caches a decision with the given TTL and indexes it under the
	// subject.
	Set(ctx context.Context, subject id.UserID, key string, allowed bool, ttl time.Duration) error

	// Remove evicts the given keys. Removing an absent key is a no-op.
	Remove(ctx context.Context, keys ...string) error

	// RemoveSubject evicts every decision indexed for the subject and
	// returns how many keys were removed.
	RemoveSubject(ctx context.Context, subject id.UserID) (int, error)
}

// AuditPublisher emits audit events for decision overrides and evictions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
