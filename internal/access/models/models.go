// Package models defines the access-control vocabulary: territory-scoped
// capabilities, platform-wide system permissions, and the cached decision
// shape produced by the evaluator.
package models

import (
	"time"

	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
)

// Capability is a territory-scoped grant. Existence of the grant in the
// membership read model implies the capability; revocation is a delete.
type Capability string

const (
	CapabilityCurator   Capability = "curator"
	CapabilityModerator Capability = "moderator"
	CapabilityEventHost Capability = "event_host"
	CapabilityMerchant  Capability = "merchant"
)

var validCapabilities = map[Capability]bool{
	CapabilityCurator:   true,
	CapabilityModerator: true,
	CapabilityEventHost: true,
	CapabilityMerchant:  true,
}

// ParseCapability constructs a Capability from external input.
func ParseCapability(s string) (Capability, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "capability cannot be empty")
	}
	c := Capability(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown capability: "+s)
	}
	return c, nil
}

// IsValid checks if the capability is one of the supported enum values.
func (c Capability) IsValid() bool { return validCapabilities[c] }

func (c Capability) String() string { return string(c) }

// SystemPermission is a territory-independent, platform-wide permission.
type SystemPermission string

const (
	// PermissionSystemAdmin short-circuits every territory capability check.
	// The bypass is explicit in the evaluator and audited; it is never
	// implied by data.
	PermissionSystemAdmin SystemPermission = "system_admin"
	// PermissionSystemAuditor grants read access to the audit trail.
	PermissionSystemAuditor SystemPermission = "system_auditor"
)

var validSystemPermissions = map[SystemPermission]bool{
	PermissionSystemAdmin:   true,
	PermissionSystemAuditor: true,
}

// ParseSystemPermission constructs a SystemPermission from external input.
func ParseSystemPermission(s string) (SystemPermission, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "system permission cannot be empty")
	}
	p := SystemPermission(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown system permission: "+s)
	}
	return p, nil
}

// IsValid checks if the permission is one of the supported enum values.
func (p SystemPermission) IsValid() bool { return validSystemPermissions[p] }

func (p SystemPermission) String() string { return string(p) }

// Decision is the derived, cached outcome of one access check. It is never
// persisted; the cache entry plus the audit trail are its only records.
type Decision struct {
	SubjectID   id.UserID
	TerritoryID id.TerritoryID // nil UUID for global checks
	Requirement string
	Allowed     bool
	ComputedAt  time.Time
	// FromCache marks decisions served from the cache rather than computed
	// against the stores.
	FromCache bool
}

// PendingPolicies lists the mandatory policies a subject has not yet
// accepted, split the way the policy store publishes them.
type PendingPolicies struct {
	RequiredTerms           []id.PolicyID
	RequiredPrivacyPolicies []id.PolicyID
}

// Empty reports whether the subject has nothing left to accept.
func (p PendingPolicies) Empty() bool {
	return len(p.RequiredTerms) == 0 && len(p.RequiredPrivacyPolicies) == 0
}
