package models

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	id "commune/pkg/domain"
)

// Cache key layout. Decision keys are digests so arbitrary requirement values
// cannot collide with or enumerate neighboring keys; the subject index key is
// plain because its only variable segment is a UUID.
const (
	keyPrefix        = "acl:v1:"
	subjectIndexSpec = "acl:v1:idx:"

	// segmentGlobal stands in for the territory segment on
	// territory-independent checks.
	segmentGlobal = "global"

	kindCapability = "cap"
	kindPermission = "perm"
	kindPolicy     = "policy"
)

// SanitizeKeySegment escapes delimiter characters in key segments so
// user-influenced identifiers containing ':' cannot manipulate adjacent
// cache entries.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// digestKey hashes the joined segments into the fixed-width decision key.
func digestKey(segments ...string) string {
	for i, s := range segments {
		segments[i] = SanitizeKeySegment(s)
	}
	sum := blake2b.Sum256([]byte(strings.Join(segments, ":")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// CapabilityKey is the cache key for a territory capability decision.
func CapabilityKey(subject id.UserID, territory id.TerritoryID, capability Capability) string {
	return digestKey(subject.String(), territory.String(), kindCapability, capability.String())
}

// PermissionKey is the cache key for a system permission decision.
func PermissionKey(subject id.UserID, permission SystemPermission) string {
	return digestKey(subject.String(), segmentGlobal, kindPermission, permission.String())
}

// PolicyKey is the cache key for the policy-acceptance gate.
func PolicyKey(subject id.UserID) string {
	return digestKey(subject.String(), segmentGlobal, kindPolicy, "accepted")
}

// SubjectIndexKey names the per-subject set of live decision keys. The
// invalidation dispatcher uses it to evict every decision for a subject.
func SubjectIndexKey(subject id.UserID) string {
	return subjectIndexSpec + subject.String()
}
