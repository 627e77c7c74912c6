//go:build integration

package policy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"commune/internal/access/store/policy"
	id "commune/pkg/domain"
	"commune/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *policy.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = policy.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "policy_acceptances", "policies")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) insertPolicy(kind string, mandatory, published bool) id.PolicyID {
	policyID := id.NewPolicyID()
	var publishedAt any
	if published {
		publishedAt = time.Now().UTC()
	}
	_, err := s.postgres.DB.Exec(
		`INSERT INTO policies (id, kind, mandatory, published_at) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(policyID), kind, mandatory, publishedAt,
	)
	s.Require().NoError(err)
	return policyID
}

func (s *PostgresStoreSuite) accept(policyID id.PolicyID, subject id.UserID) {
	_, err := s.postgres.DB.Exec(
		`INSERT INTO policy_acceptances (policy_id, subject_id) VALUES ($1, $2)`,
		uuid.UUID(policyID), uuid.UUID(subject),
	)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestPendingCoversUnacceptedMandatoryPolicies() {
	ctx := context.Background()
	subject := id.NewUserID()
	terms := s.insertPolicy("terms", true, true)
	privacy := s.insertPolicy("privacy", true, true)

	pending, err := s.store.GetPendingPolicies(ctx, subject)
	s.Require().NoError(err)
	s.ElementsMatch([]id.PolicyID{terms}, pending.RequiredTerms)
	s.ElementsMatch([]id.PolicyID{privacy}, pending.RequiredPrivacyPolicies)
	s.False(pending.Empty())
}

func (s *PostgresStoreSuite) TestAcceptanceClearsPending() {
	ctx := context.Background()
	subject := id.NewUserID()
	terms := s.insertPolicy("terms", true, true)
	privacy := s.insertPolicy("privacy", true, true)

	s.accept(terms, subject)

	pending, err := s.store.GetPendingPolicies(ctx, subject)
	s.Require().NoError(err)
	s.Empty(pending.RequiredTerms)
	s.ElementsMatch([]id.PolicyID{privacy}, pending.RequiredPrivacyPolicies)

	s.accept(privacy, subject)

	pending, err = s.store.GetPendingPolicies(ctx, subject)
	s.Require().NoError(err)
	s.True(pending.Empty())
}

func (s *PostgresStoreSuite) TestUnpublishedAndOptionalPoliciesDoNotGate() {
	ctx := context.Background()
	subject := id.NewUserID()

	s.insertPolicy("terms", true, false)    // drafted, not published
	s.insertPolicy("privacy", false, true)  // published, opt-in only
	s.insertPolicy("guidelines", true, true) // kind this engine does not gate on

	pending, err := s.store.GetPendingPolicies(ctx, subject)
	s.Require().NoError(err)
	s.True(pending.Empty())
}

func (s *PostgresStoreSuite) TestAcceptancesAreSubjectScoped() {
	ctx := context.Background()
	accepted := id.NewUserID()
	other := id.NewUserID()
	terms := s.insertPolicy("terms", true, true)

	s.accept(terms, accepted)

	pending, err := s.store.GetPendingPolicies(ctx, other)
	s.Require().NoError(err)
	s.ElementsMatch([]id.PolicyID{terms}, pending.RequiredTerms)
}
