// Package evaluator implements the access decision point. It merges territory
// capability grants, platform permissions, and policy acceptance into cached
// allow/deny decisions.
//
// Failure policy is fail-closed on every authorization-affecting path: if a
// store or the cache cannot be reached, checks return deny plus an error.
// Nothing is ever cached on a failure path.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"commune/internal/access/metrics"
	"commune/internal/access/models"
	"commune/internal/access/ports"
	"commune/internal/platform/config"
	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
	"commune/pkg/platform/audit"
)

const (
	sourceCache = "cache"
	sourceStore = "store"

	requirementCapability = "capability"
	requirementPermission = "permission"
	requirementPolicy     = "policy"
)

// Evaluator is the policy decision point. It is safe for concurrent use; the
// cache is shared multi-writer state whose values are idempotent booleans, so
// lost updates are harmless.
type Evaluator struct {
	caps     ports.CapabilityStore
	policies ports.PolicyStore
	cache    ports.DecisionCache
	auditor  ports.AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      config.AccessConfig
	tracer   trace.Tracer

	// group collapses concurrent cache misses for the same decision key so a
	// hot check does not stampede the stores.
	group singleflight.Group
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets a logger for cache-write and audit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithAuditPublisher sets the audit sink for admin-bypass decisions and
// manual invalidations.
func WithAuditPublisher(auditor ports.AuditPublisher) Option {
	return func(e *Evaluator) { e.auditor = auditor }
}

// New constructs the evaluator. All three collaborators are required: an
// absent store or cache must be a wiring error, never a silently skipped
// check.
func New(caps ports.CapabilityStore, policies ports.PolicyStore, cache ports.DecisionCache, cfg config.AccessConfig, opts ...Option) (*Evaluator, error) {
	if caps == nil {
		return nil, fmt.Errorf("capability store is required")
	}
	if policies == nil {
		return nil, fmt.Errorf("policy store is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("decision cache is required")
	}

	e := &Evaluator{
		caps:     caps,
		policies: policies,
		cache:    cache,
		cfg:      cfg,
		tracer:   otel.Tracer("commune/access"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HasCapability reports whether the subject holds the capability in the
// territory. A SystemAdmin permission short-circuits the territory store:
// central admin bypass is explicit and audited, never implied by grant data.
func (e *Evaluator) HasCapability(ctx context.Context, subject id.UserID, territory id.TerritoryID, capability models.Capability) (bool, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveCheckLatency(time.Since(start)) }()

	ctx, span := e.tracer.Start(ctx, "access.HasCapability", trace.WithAttributes(
		attribute.String("access.subject", subject.String()),
		attribute.String("access.territory", territory.String()),
		attribute.String("access.capability", capability.String()),
	))
	defer span.End()

	key := models.CapabilityKey(subject, territory, capability)
	if allowed, found, err := e.cache.Get(ctx, key); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache unreachable")
	} else if found {
		e.metrics.IncrementDecision(requirementCapability, outcome(allowed), sourceCache)
		return allowed, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		return e.computeCapability(ctx, subject, territory, capability, key)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (e *Evaluator) computeCapability(ctx context.Context, subject id.UserID, territory id.TerritoryID, capability models.Capability, key string) (bool, error) {
	perms, err := e.caps.ListSystemPermissions(ctx, subject)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "permission store unreachable")
	}
	if containsPermission(perms, models.PermissionSystemAdmin) {
		e.emitAudit(ctx, audit.Event{
			Action:      audit.ActionAdminBypass,
			ActorID:     subject,
			TerritoryID: territory,
			TargetType:  "capability",
			TargetID:    capability.String(),
			Decision:    "allowed",
			Reason:      "system_admin",
		})
		e.cacheSet(ctx, subject, key, true, e.cfg.DecisionTTL)
		e.metrics.IncrementDecision(requirementCapability, outcome(true), sourceStore)
		return true, nil
	}

	grants, err := e.caps.ListCapabilities(ctx, subject, territory)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "capability store unreachable")
	}
	allowed := containsCapability(grants, capability)

	// Deny is cached alongside allow so repeated checks from buggy or
	// malicious callers cannot amplify load on the stores.
	e.cacheSet(ctx, subject, key, allowed, e.cfg.DecisionTTL)
	e.metrics.IncrementDecision(requirementCapability, outcome(allowed), sourceStore)
	return allowed, nil
}

// HasSystemPermission reports whether the subject holds the platform-wide
// permission.
func (e *Evaluator) HasSystemPermission(ctx context.Context, subject id.UserID, permission models.SystemPermission) (bool, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveCheckLatency(time.Since(start)) }()

	ctx, span := e.tracer.Start(ctx, "access.HasSystemPermission", trace.WithAttributes(
		attribute.String("access.subject", subject.String()),
		attribute.String("access.permission", permission.String()),
	))
	defer span.End()

	key := models.PermissionKey(subject, permission)
	if allowed, found, err := e.cache.Get(ctx, key); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache unreachable")
	} else if found {
		e.metrics.IncrementDecision(requirementPermission, outcome(allowed), sourceCache)
		return allowed, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		perms, err := e.caps.ListSystemPermissions(ctx, subject)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "permission store unreachable")
		}
		allowed := containsPermission(perms, permission)
		e.cacheSet(ctx, subject, key, allowed, e.cfg.DecisionTTL)
		e.metrics.IncrementDecision(requirementPermission, outcome(allowed), sourceStore)
		return allowed, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// HasAcceptedRequiredPolicies reports whether the subject has accepted every
// published mandatory policy. The result is cached only briefly (or not at
// all when PolicyTTL is zero) so newly published policies gate writes
// promptly.
func (e *Evaluator) HasAcceptedRequiredPolicies(ctx context.Context, subject id.UserID) (bool, error) {
	ctx, span := e.tracer.Start(ctx, "access.HasAcceptedRequiredPolicies", trace.WithAttributes(
		attribute.String("access.subject", subject.String()),
	))
	defer span.End()

	key := models.PolicyKey(subject)
	if e.cfg.PolicyTTL > 0 {
		if accepted, found, err := e.cache.Get(ctx, key); err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache unreachable")
		} else if found {
			e.metrics.IncrementDecision(requirementPolicy, outcome(accepted), sourceCache)
			return accepted, nil
		}
	}

	pending, err := e.policies.GetPendingPolicies(ctx, subject)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "policy store unreachable")
	}
	accepted := pending.Empty()
	if e.cfg.PolicyTTL > 0 {
		e.cacheSet(ctx, subject, key, accepted, e.cfg.PolicyTTL)
	}
	e.metrics.IncrementDecision(requirementPolicy, outcome(accepted), sourceStore)
	return accepted, nil
}

// GetPendingPolicies returns the mandatory policies the subject still has to
// accept. Never cached: callers use this to render the acceptance prompt.
func (e *Evaluator) GetPendingPolicies(ctx context.Context, subject id.UserID) (models.PendingPolicies, error) {
	pending, err := e.policies.GetPendingPolicies(ctx, subject)
	if err != nil {
		return models.PendingPolicies{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "policy store unreachable")
	}
	return pending, nil
}

// Invalidate evicts every cached decision for the subject. Used by the ops
// surface for subject-wide resets; routine revocations go through the
// event-driven dispatcher instead.
func (e *Evaluator) Invalidate(ctx context.Context, subject id.UserID, actor id.UserID) (int, error) {
	removed, err := e.cache.RemoveSubject(ctx, subject)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision cache unreachable")
	}
	e.emitAudit(ctx, audit.Event{
		Action:     audit.ActionCacheInvalidated,
		ActorID:    actor,
		TargetType: "subject",
		TargetID:   subject.String(),
		Reason:     strconv.Itoa(removed) + " keys evicted",
	})
	return removed, nil
}

// cacheSet writes a computed decision. A cache-write failure does not fail
// the check: the decision was computed against the source of truth, and a
// missing cache entry only costs a recomputation.
func (e *Evaluator) cacheSet(ctx context.Context, subject id.UserID, key string, allowed bool, ttl time.Duration) {
	if err := e.cache.Set(ctx, subject, key, allowed, ttl); err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "decision cache write failed", "error", err)
	}
}

// emitAudit is best-effort: audit is observability here, not a correctness
// dependency, so failures are logged and swallowed.
func (e *Evaluator) emitAudit(ctx context.Context, event audit.Event) {
	if e.auditor == nil {
		return
	}
	if err := e.auditor.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}

func containsCapability(grants []models.Capability, capability models.Capability) bool {
	for _, g := range grants {
		if g == capability {
			return true
		}
	}
	return false
}

func containsPermission(perms []models.SystemPermission, permission models.SystemPermission) bool {
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
