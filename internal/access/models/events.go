package models

// Event bus topics consumed by the cache invalidation dispatcher. Revocations
// are pushed; grants are not: a fresh grant becomes visible when the old
// cache entry's TTL lapses. False negatives are tolerated, false positives
// are not.
const (
	TopicCapabilityRevoked = "access.capability.revoked"
	TopicPermissionRevoked = "access.permission.revoked"
)

// CapabilityRevoked is the wire shape for a territory capability revocation.
type CapabilityRevoked struct {
	SubjectID   string `json:"subject_id"`
	TerritoryID string `json:"territory_id"`
	Capability  string `json:"capability"`
}

// SystemPermissionRevoked is the wire shape for a platform permission
// revocation.
type SystemPermissionRevoked struct {
	SubjectID  string `json:"subject_id"`
	Permission string `json:"permission"`
}
