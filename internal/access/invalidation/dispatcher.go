// Package invalidation evicts cached access decisions in response to
// revocation domain events.
//
// The event bus delivers at-least-once with no ordering guarantee across
// event types, so handling is idempotent and commutative: evicting an absent
// key is a no-op, and evicting twice is the same as evicting once. A cached
// decision is never staler than the latest processed revocation for its
// subject, because eviction completes before the message offset is
// committed.
package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"commune/internal/access/metrics"
	"commune/internal/access/models"
	"commune/internal/access/ports"
	"commune/internal/platform/kafka"
	id "commune/pkg/domain"
)

// Topics returns the topics the dispatcher consumes.
func Topics() []string {
	return []string{models.TopicCapabilityRevoked, models.TopicPermissionRevoked}
}

// Dispatcher implements kafka.Handler for revocation events.
type Dispatcher struct {
	cache   ports.DecisionCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New constructs a dispatcher over the shared decision cache.
func New(cache ports.DecisionCache, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	if cache == nil {
		return nil, fmt.Errorf("decision cache is required")
	}
	d := &Dispatcher{cache: cache, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handle routes one event bus message. Malformed payloads are logged and
// dropped (returning nil commits the offset); retrying them can never
// succeed, and a poison message must not wedge the revocation stream.
func (d *Dispatcher) Handle(ctx context.Context, msg *kafka.Message) error {
	switch msg.Topic {
	case models.TopicCapabilityRevoked:
		return d.handleCapabilityRevoked(ctx, msg.Value)
	case models.TopicPermissionRevoked:
		return d.handlePermissionRevoked(ctx, msg.Value)
	default:
		d.logger.Warn("no handler for topic, skipping message", "topic", msg.Topic)
		return nil
	}
}

func (d *Dispatcher) handleCapabilityRevoked(ctx context.Context, payload []byte) error {
	var event models.CapabilityRevoked
	if err := json.Unmarshal(payload, &event); err != nil {
		d.logger.Warn("malformed capability revocation, dropping", "error", err)
		d.metrics.IncrementInvalidation("capability_revoked", "skipped")
		return nil
	}
	subject, err := id.ParseUserID(event.SubjectID)
	if err != nil {
		d.logger.Warn("capability revocation with invalid subject, dropping", "error", err)
		d.metrics.IncrementInvalidation("capability_revoked", "skipped")
		return nil
	}
	territory, err := id.ParseTerritoryID(event.TerritoryID)
	if err != nil {
		d.logger.Warn("capability revocation with invalid territory, dropping", "error", err)
		d.metrics.IncrementInvalidation("capability_revoked", "skipped")
		return nil
	}
	capability, err := models.ParseCapability(event.Capability)
	if err != nil {
		d.logger.Warn("capability revocation with unknown capability, dropping", "error", err)
		d.metrics.IncrementInvalidation("capability_revoked", "skipped")
		return nil
	}

	key := models.CapabilityKey(subject, territory, capability)
	if err := d.cache.Remove(ctx, key); err != nil {
		// Cache unreachable: return the error so the record is
		// redelivered and the eviction retried. Committing here would
		// let a stale "allowed" survive the revocation.
		d.metrics.IncrementInvalidation("capability_revoked", "error")
		return fmt.Errorf("evict capability decision: %w", err)
	}
	d.metrics.IncrementInvalidation("capability_revoked", "evicted")
	d.logger.InfoContext(ctx, "capability decision evicted",
		"subject", subject.String(),
		"territory", territory.String(),
		"capability", capability.String(),
	)
	return nil
}

func (d *Dispatcher) handlePermissionRevoked(ctx context.Context, payload []byte) error {
	var event models.SystemPermissionRevoked
	if err := json.Unmarshal(payload, &event); err != nil {
		d.logger.Warn("malformed permission revocation, dropping", "error", err)
		d.metrics.IncrementInvalidation("permission_revoked", "skipped")
		return nil
	}
	subject, err := id.ParseUserID(event.SubjectID)
	if err != nil {
		d.logger.Warn("permission revocation with invalid subject, dropping", "error", err)
		d.metrics.IncrementInvalidation("permission_revoked", "skipped")
		return nil
	}
	permission, err := models.ParseSystemPermission(event.Permission)
	if err != nil {
		d.logger.Warn("permission revocation with unknown permission, dropping", "error", err)
		d.metrics.IncrementInvalidation("permission_revoked", "skipped")
		return nil
	}

	// A SystemAdmin bypass may have satisfied any cached capability decision
	// for this subject, so the whole subject index is evicted along with the
	// permission key itself.
	key := models.PermissionKey(subject, permission)
	if err := d.cache.Remove(ctx, key); err != nil {
		d.metrics.IncrementInvalidation("permission_revoked", "error")
		return fmt.Errorf("evict permission decision: %w", err)
	}
	removed, err := d.cache.RemoveSubject(ctx, subject)
	if err != nil {
		d.metrics.IncrementInvalidation("permission_revoked", "error")
		return fmt.Errorf("evict subject decisions: %w", err)
	}
	d.metrics.IncrementInvalidation("permission_revoked", "evicted")
	d.logger.InfoContext(ctx, "permission decisions evicted",
		"subject", subject.String(),
		"permission", permission.String(),
		"keys_removed", removed+1,
	)
	return nil
}
