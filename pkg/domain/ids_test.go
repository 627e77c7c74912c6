package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "commune/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the shared parsing invariant: IDs must
// be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, validUUID.String(), id.String())
	})
}

// TestParse_AllIDTypes verifies every Parse* function enforces the same
// invariant; divergent validation across ID types would be a security hole.
func TestParse_AllIDTypes(t *testing.T) {
	valid := uuid.New().String()

	parsers := map[string]func(string) (string, error){
		"user": func(s string) (string, error) {
			id, err := ParseUserID(s)
			return id.String(), err
		},
		"territory": func(s string) (string, error) {
			id, err := ParseTerritoryID(s)
			return id.String(), err
		},
		"post": func(s string) (string, error) {
			id, err := ParsePostID(s)
			return id.String(), err
		},
		"policy": func(s string) (string, error) {
			id, err := ParsePolicyID(s)
			return id.String(), err
		},
		"report": func(s string) (string, error) {
			id, err := ParseReportID(s)
			return id.String(), err
		},
	}

	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			got, err := parse(valid)
			require.NoError(t, err)
			assert.Equal(t, valid, got)

			_, err = parse("")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

			_, err = parse(uuid.Nil.String())
			require.Error(t, err)

			_, err = parse("garbage")
			require.Error(t, err)
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID(uuid.Nil).IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.True(t, TerritoryID(uuid.Nil).IsNil())
	assert.False(t, NewTerritoryID().IsNil())
	assert.True(t, ReportID(uuid.Nil).IsNil())
	assert.False(t, NewReportID().IsNil())
}

// TestIDTypesShareOnlyTheirStringForm pins the property the typed IDs exist
// for: a UserID and a TerritoryID built from the same bytes render the same
// string but remain different types to the compiler.
func TestIDTypesShareOnlyTheirStringForm(t *testing.T) {
	raw := uuid.New()
	user := UserID(raw)
	territory := TerritoryID(raw)

	assert.Equal(t, user.String(), territory.String())
	assert.IsType(t, UserID{}, user)
	assert.IsType(t, TerritoryID{}, territory)
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewReportID()
		require.False(t, seen[id.String()], "generated a duplicate ID")
		seen[id.String()] = true
	}
}
