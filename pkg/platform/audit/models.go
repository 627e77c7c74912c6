// Package audit provides the append-only audit trail for access decisions and
// moderation actions. Events are transport-agnostic so stores and sinks can
// fan out.
package audit

import (
	"time"

	id "commune/pkg/domain"
)

// Action names recorded in the audit trail. Per-report intake entries and
// threshold auto-action entries use distinct actions so the trail
// distinguishes "a report arrived" from "the platform acted".
const (
	ActionReportFiled      = "moderation.report.filed"
	ActionThresholdPost    = "moderation.threshold.post"
	ActionThresholdUser    = "moderation.threshold.user"
	ActionAdminBypass      = "access.admin_bypass"
	ActionCacheInvalidated = "access.cache.invalidated"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp   time.Time
	Action      string
	ActorID     id.UserID
	TerritoryID id.TerritoryID
	// TargetType and TargetID describe what was acted on ("post", "user",
	// "cache_key"). Kept as strings so the trail is not coupled to every
	// module's ID types.
	TargetType string
	TargetID   string
	Decision   string
	Reason     string
	RequestID  string
}
