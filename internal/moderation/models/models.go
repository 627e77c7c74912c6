// Package models defines the moderation vocabulary: reports, sanctions, and
// the targets they point at.
package models

import (
	"time"

	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
)

// TargetType says what kind of entity a report points at.
type TargetType string

const (
	TargetPost TargetType = "post"
	TargetUser TargetType = "user"
)

// IsValid checks if the target type is one of the supported enum values.
func (t TargetType) IsValid() bool { return t == TargetPost || t == TargetUser }

func (t TargetType) String() string { return string(t) }

// ParseTargetType constructs a TargetType from external input.
func ParseTargetType(s string) (TargetType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "target type cannot be empty")
	}
	t := TargetType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid target type: must be 'post' or 'user'")
	}
	return t, nil
}

// Target is the (type, id) pair a report is filed against.
type Target struct {
	Type TargetType
	ID   string // uuid string of the post or user
}

// Validate checks the target shape. Existence is checked separately against
// the owning module.
func (t Target) Validate() error {
	if !t.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid target type")
	}
	switch t.Type {
	case TargetPost:
		if _, err := id.ParsePostID(t.ID); err != nil {
			return err
		}
	case TargetUser:
		if _, err := id.ParseUserID(t.ID); err != nil {
			return err
		}
	}
	return nil
}

// PostTarget builds a Target for a post.
func PostTarget(postID id.PostID) Target {
	return Target{Type: TargetPost, ID: postID.String()}
}

// UserTarget builds a Target for a user.
func UserTarget(userID id.UserID) Target {
	return Target{Type: TargetUser, ID: userID.String()}
}

// ReportReason classifies why content or a user was reported.
type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonIllegalContent ReportReason = "illegal_content"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonOther          ReportReason = "other"
)

var validReasons = map[ReportReason]bool{
	ReasonSpam:           true,
	ReasonHarassment:     true,
	ReasonIllegalContent: true,
	ReasonMisinformation: true,
	ReasonOther:          true,
}

// ParseReportReason constructs a ReportReason from external input.
func ParseReportReason(s string) (ReportReason, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "reason cannot be empty")
	}
	r := ReportReason(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown report reason: "+s)
	}
	return r, nil
}

// IsValid checks if the reason is one of the supported enum values.
func (r ReportReason) IsValid() bool { return validReasons[r] }

func (r ReportReason) String() string { return string(r) }

// ReportStatus tracks a report through review.
type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

// Report is one counted report against a target. One reporter contributes at
// most one counted report per target within the duplicate-suppression window;
// duplicates are accepted silently but create no row.
type Report struct {
	ID          id.ReportID
	ReporterID  id.UserID
	TerritoryID id.TerritoryID
	Target      Target
	Reason      ReportReason
	Details     string
	Status      ReportStatus
	CreatedAt   time.Time
}

// SanctionType classifies automatic and manual sanctions.
type SanctionType string

const (
	// SanctionSuspension is the automatic, time-bounded suspension applied
	// when the report threshold is crossed on a user target.
	SanctionSuspension SanctionType = "suspension"
)

// SanctionStatus tracks a sanction's lifecycle. Expiry and lifting are owned
// by a separate process; this core only creates Active sanctions.
type SanctionStatus string

const (
	SanctionActive  SanctionStatus = "active"
	SanctionExpired SanctionStatus = "expired"
)

// Sanction is a time-bounded penalty on a target. At most one Active sanction
// per (target, type) may exist; that uniqueness is the concurrency guard
// against double-sanctioning.
type Sanction struct {
	ID          id.SanctionID
	TerritoryID id.TerritoryID
	Target      Target
	Type        SanctionType
	Status      SanctionStatus
	StartsAt    time.Time
	EndsAt      time.Time
}
