// Package domain holds typed identifiers and enums shared across modules.
//
// IDs are distinct uuid-backed types so the compiler rejects cross-type
// assignment (passing a TerritoryID where a UserID is expected is a bug we
// want caught at compile time, not in production).
package domain

import (
	"github.com/google/uuid"

	dErrors "commune/pkg/domain-errors"
)

type (
	// UserID identifies a platform account. Also used as the access subject
	// in capability checks and as the reporter in moderation reports.
	UserID uuid.UUID

	// TerritoryID identifies a territory (tenant scope for capabilities,
	// feeds, marketplaces, and moderation).
	TerritoryID uuid.UUID

	// PostID identifies a feed post.
	PostID uuid.UUID

	// PolicyID identifies a published terms or privacy policy version.
	PolicyID uuid.UUID

	// ReportID identifies a moderation report.
	ReportID uuid.UUID

	// SanctionID identifies a sanction applied to a user.
	SanctionID uuid.UUID
)

// NewUserID generates a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTerritoryID generates a random TerritoryID.
func NewTerritoryID() TerritoryID { return TerritoryID(uuid.New()) }

// NewPostID generates a random PostID.
func NewPostID() PostID { return PostID(uuid.New()) }

// NewPolicyID generates a random PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewReportID generates a random ReportID.
func NewReportID() ReportID { return ReportID(uuid.New()) }

// NewSanctionID generates a random SanctionID.
func NewSanctionID() SanctionID { return SanctionID(uuid.New()) }

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id TerritoryID) String() string { return uuid.UUID(id).String() }
func (id PostID) String() string      { return uuid.UUID(id).String() }
func (id PolicyID) String() string    { return uuid.UUID(id).String() }
func (id ReportID) String() string    { return uuid.UUID(id).String() }
func (id SanctionID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TerritoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SanctionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs. Construct IDs via the Parse* functions at trust
// boundaries; direct casting bypasses validation.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseTerritoryID constructs a TerritoryID from external input.
func ParseTerritoryID(s string) (TerritoryID, error) {
	u, err := parseUUID(s, "territory id")
	return TerritoryID(u), err
}

// ParsePostID constructs a PostID from external input.
func ParsePostID(s string) (PostID, error) {
	u, err := parseUUID(s, "post id")
	return PostID(u), err
}

// ParsePolicyID constructs a PolicyID from external input.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy id")
	return PolicyID(u), err
}

// ParseReportID constructs a ReportID from external input.
func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s, "report id")
	return ReportID(u), err
}
