package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commune/internal/moderation/models"
	id "commune/pkg/domain"
)

func newReport(reporter id.UserID, target models.Target, createdAt time.Time) models.Report {
	return models.Report{
		ID:          id.NewReportID(),
		ReporterID:  reporter,
		TerritoryID: id.NewTerritoryID(),
		Target:      target,
		Reason:      models.ReasonSpam,
		Status:      models.ReportOpen,
		CreatedAt:   createdAt,
	}
}

func TestFindRecentByReporter(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	reporter := id.NewUserID()
	target := models.PostTarget(id.NewPostID())
	now := time.Now()

	old := newReport(reporter, target, now.Add(-48*time.Hour))
	recent := newReport(reporter, target, now.Add(-time.Hour))
	require.NoError(t, s.Insert(ctx, old))
	require.NoError(t, s.Insert(ctx, recent))

	found, err := s.FindRecentByReporter(ctx, reporter, target, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, recent.ID, found.ID, "the newest report inside the window is returned")

	found, err = s.FindRecentByReporter(ctx, reporter, target, now)
	require.NoError(t, err)
	assert.Nil(t, found, "nothing inside an empty window")

	found, err = s.FindRecentByReporter(ctx, id.NewUserID(), target, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found, "other reporters do not match")
}

func TestCountDistinctReporters(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	target := models.PostTarget(id.NewPostID())
	otherTarget := models.UserTarget(id.NewUserID())
	now := time.Now()

	alice := id.NewUserID()
	require.NoError(t, s.Insert(ctx, newReport(alice, target, now.Add(-time.Hour))))
	require.NoError(t, s.Insert(ctx, newReport(alice, target, now.Add(-30*time.Hour))))
	require.NoError(t, s.Insert(ctx, newReport(id.NewUserID(), target, now.Add(-time.Hour))))
	require.NoError(t, s.Insert(ctx, newReport(id.NewUserID(), otherTarget, now.Add(-time.Hour))))
	require.NoError(t, s.Insert(ctx, newReport(id.NewUserID(), target, now.Add(-10*24*time.Hour))))

	count, err := s.CountDistinctReporters(ctx, target, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count, "reporters, not rows; other targets and aged-out reports excluded")
}
