package models

import "time"

// Event bus topics produced by the threshold engine.
const (
	TopicReportCreated     = "moderation.report.created"
	TopicAutoActionApplied = "moderation.autoaction.applied"
)

// ReportCreated is published after a counted report is committed.
type ReportCreated struct {
	ReportID      string    `json:"report_id"`
	TerritoryID   string    `json:"territory_id"`
	ReporterID    string    `json:"reporter_id"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
}

// AutoActionApplied is published once per threshold crossing so downstream
// subsystems (notifications, trust & safety review queues) can react.
type AutoActionApplied struct {
	TargetType    string    `json:"target_type"`
	TargetID      string    `json:"target_id"`
	TerritoryID   string    `json:"territory_id"`
	Action        string    `json:"action"` // "post_hidden" or "user_suspended"
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
}
