package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"commune/internal/moderation/adapters"
	"commune/internal/moderation/models"
	"commune/internal/moderation/ports/mocks"
	"commune/internal/moderation/store/pgxtx"
	reportstore "commune/internal/moderation/store/report"
	sanctionstore "commune/internal/moderation/store/sanction"
	"commune/internal/platform/config"
	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
	"commune/pkg/platform/audit"
	auditmemory "commune/pkg/platform/audit/store/memory"
	"commune/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	reports    *reportstore.InMemoryStore
	sanctions  *sanctionstore.InMemoryStore
	directory  *adapters.InMemoryDirectory
	auditStore *auditmemory.Store
	service    *Service

	territory id.TerritoryID
	post      id.PostID
	user      id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.reports = reportstore.NewInMemory()
	s.sanctions = sanctionstore.NewInMemory()
	s.directory = adapters.NewInMemoryDirectory()
	s.auditStore = auditmemory.New()

	s.territory = id.NewTerritoryID()
	s.post = id.NewPostID()
	s.user = id.NewUserID()
	s.directory.AddPost(s.post, s.territory)
	s.directory.AddMember(s.territory, s.user)

	svc, err := New(s.reports, s.sanctions, s.directory, s.directory, pgxtx.NewSerialRunner(),
		config.ModerationConfig{
			ReportThreshold:  3,
			DuplicateWindow:  24 * time.Hour,
			EvaluationWindow: 7 * 24 * time.Hour,
			SanctionDuration: 72 * time.Hour,
		},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) input(reporter id.UserID, target models.Target) FileReportInput {
	return FileReportInput{
		ReporterID:  reporter,
		TerritoryID: s.territory,
		Target:      target,
		Reason:      models.ReasonSpam,
	}
}

func (s *ServiceSuite) TestValidation() {
	ctx := context.Background()
	target := models.PostTarget(s.post)

	s.Run("missing reporter", func() {
		in := s.input(id.UserID{}, target)
		_, err := s.service.FileReport(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing territory", func() {
		in := s.input(s.user, target)
		in.TerritoryID = id.TerritoryID{}
		_, err := s.service.FileReport(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("invalid target", func() {
		in := s.input(s.user, models.Target{Type: models.TargetPost, ID: "not-a-uuid"})
		_, err := s.service.FileReport(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("invalid reason", func() {
		in := s.input(s.user, target)
		in.Reason = models.ReportReason("grumpy")
		_, err := s.service.FileReport(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("nonexistent target", func() {
		in := s.input(s.user, models.PostTarget(id.NewPostID()))
		_, err := s.service.FileReport(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Empty(s.reports.All(), "no report persisted on any rejected intake")
}

func (s *ServiceSuite) TestDuplicateSuppression() {
	now := time.Now()
	ctx := requestcontext.WithTime(context.Background(), now)
	target := models.PostTarget(s.post)

	first, err := s.service.FileReport(ctx, s.input(s.user, target))
	s.Require().NoError(err)
	s.True(first.Created)

	s.Run("repeat within the window is accepted silently", func() {
		again, err := s.service.FileReport(ctx, s.input(s.user, target))
		s.Require().NoError(err)
		s.False(again.Created)
		s.Equal(first.Report.ID, again.Report.ID, "the existing report is returned")
		s.Len(s.reports.All(), 1)
	})

	s.Run("same reporter, different target counts", func() {
		other := id.NewPostID()
		s.directory.AddPost(other, s.territory)
		res, err := s.service.FileReport(ctx, s.input(s.user, models.PostTarget(other)))
		s.Require().NoError(err)
		s.True(res.Created)
	})

	s.Run("window expiry lets the reporter count again", func() {
		later := requestcontext.WithTime(context.Background(), now.Add(25*time.Hour))
		res, err := s.service.FileReport(later, s.input(s.user, target))
		s.Require().NoError(err)
		s.True(res.Created)
	})
}

// TestThresholdScenario walks the canonical crossing: with a threshold of
// three, reporters A and B leave the post untouched, C triggers the hide, and
// D's later report changes nothing.
func (s *ServiceSuite) TestThresholdScenario() {
	ctx := context.Background()
	target := models.PostTarget(s.post)
	a, b, c, d := id.NewUserID(), id.NewUserID(), id.NewUserID(), id.NewUserID()

	resA, err := s.service.FileReport(ctx, s.input(a, target))
	s.Require().NoError(err)
	s.True(resA.Created)
	s.False(resA.AutoActioned)

	resB, err := s.service.FileReport(ctx, s.input(b, target))
	s.Require().NoError(err)
	s.False(resB.AutoActioned)
	s.False(s.directory.IsHidden(s.post), "two distinct reporters stay below the threshold")

	resC, err := s.service.FileReport(ctx, s.input(c, target))
	s.Require().NoError(err)
	s.True(resC.Created)
	s.True(resC.AutoActioned, "third distinct reporter crosses the threshold")
	s.True(s.directory.IsHidden(s.post))
	s.Equal(1, s.auditStore.CountByAction(audit.ActionThresholdPost))

	resD, err := s.service.FileReport(ctx, s.input(d, target))
	s.Require().NoError(err)
	s.True(resD.Created, "reports after the action are still recorded")
	s.False(resD.AutoActioned, "the action fires exactly once")
	s.Equal(1, s.auditStore.CountByAction(audit.ActionThresholdPost))

	s.Equal(4, s.auditStore.CountByAction(audit.ActionReportFiled))
}

func (s *ServiceSuite) TestOneReporterCannotCrossAlone() {
	now := time.Now()
	target := models.PostTarget(s.post)

	// Three counted reports from the same reporter across duplicate windows:
	// rows accumulate, distinct count stays one.
	for day := 0; day < 3; day++ {
		ctx := requestcontext.WithTime(context.Background(), now.Add(time.Duration(day)*25*time.Hour))
		res, err := s.service.FileReport(ctx, s.input(s.user, target))
		s.Require().NoError(err)
		s.True(res.Created)
		s.False(res.AutoActioned)
	}
	s.Len(s.reports.All(), 3)
	s.False(s.directory.IsHidden(s.post))
}

func (s *ServiceSuite) TestOldReportsAgeOutOfTheCount() {
	now := time.Now()
	target := models.PostTarget(s.post)

	early := requestcontext.WithTime(context.Background(), now.Add(-8*24*time.Hour))
	_, err := s.service.FileReport(early, s.input(id.NewUserID(), target))
	s.Require().NoError(err)

	ctx := requestcontext.WithTime(context.Background(), now)
	_, err = s.service.FileReport(ctx, s.input(id.NewUserID(), target))
	s.Require().NoError(err)
	res, err := s.service.FileReport(ctx, s.input(id.NewUserID(), target))
	s.Require().NoError(err)
	s.False(res.AutoActioned, "a report outside the evaluation window does not count")
	s.False(s.directory.IsHidden(s.post))
}

func (s *ServiceSuite) TestUserThresholdCreatesOneSanction() {
	now := time.Now()
	ctx := requestcontext.WithTime(context.Background(), now)
	target := models.UserTarget(s.user)

	for i := 0; i < 2; i++ {
		_, err := s.service.FileReport(ctx, s.input(id.NewUserID(), target))
		s.Require().NoError(err)
	}
	s.Empty(s.sanctions.All())

	res, err := s.service.FileReport(ctx, s.input(id.NewUserID(), target))
	s.Require().NoError(err)
	s.True(res.AutoActioned)

	all := s.sanctions.All()
	s.Require().Len(all, 1)
	s.Equal(models.SanctionSuspension, all[0].Type)
	s.Equal(models.SanctionActive, all[0].Status)
	s.Equal(now.UTC().Add(72*time.Hour), all[0].EndsAt, "suspension is time-bounded")
	s.Equal(1, s.auditStore.CountByAction(audit.ActionThresholdUser))

	// A fourth reporter re-crosses the threshold; the active sanction guard
	// stops a second suspension.
	res, err = s.service.FileReport(ctx, s.input(id.NewUserID(), target))
	s.Require().NoError(err)
	s.False(res.AutoActioned)
	s.Len(s.sanctions.All(), 1)
	s.Equal(1, s.auditStore.CountByAction(audit.ActionThresholdUser))
}

func (s *ServiceSuite) TestEventsArePublished() {
	ctrl := gomock.NewController(s.T())
	events := mocks.NewMockEventPublisher(ctrl)

	svc, err := New(s.reports, s.sanctions, s.directory, s.directory, pgxtx.NewSerialRunner(),
		config.ModerationConfig{
			ReportThreshold:  1,
			DuplicateWindow:  24 * time.Hour,
			EvaluationWindow: 7 * 24 * time.Hour,
			SanctionDuration: 72 * time.Hour,
		},
		WithEventPublisher(events),
	)
	s.Require().NoError(err)

	events.EXPECT().Publish(gomock.Any(), models.TopicReportCreated, gomock.Any(), gomock.Any()).Return(nil)
	events.EXPECT().Publish(gomock.Any(), models.TopicAutoActionApplied, gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.FileReport(context.Background(), s.input(s.user, models.PostTarget(s.post)))
	s.Require().NoError(err)
	s.True(res.AutoActioned)
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailIntake() {
	ctrl := gomock.NewController(s.T())
	events := mocks.NewMockEventPublisher(ctrl)
	events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(context.DeadlineExceeded).AnyTimes()

	svc, err := New(s.reports, s.sanctions, s.directory, s.directory, pgxtx.NewSerialRunner(),
		config.ModerationConfig{
			ReportThreshold:  3,
			DuplicateWindow:  24 * time.Hour,
			EvaluationWindow: 7 * 24 * time.Hour,
			SanctionDuration: 72 * time.Hour,
		},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithEventPublisher(events),
	)
	s.Require().NoError(err)

	res, err := svc.FileReport(context.Background(), s.input(s.user, models.PostTarget(s.post)))
	s.Require().NoError(err)
	s.True(res.Created, "the committed report stands even when the bus is down")
}

func (s *ServiceSuite) TestHideFailureAbortsIntake() {
	ctrl := gomock.NewController(s.T())
	content := mocks.NewMockContentModeration(ctrl)
	content.EXPECT().HidePost(gomock.Any(), s.post).Return(false, context.DeadlineExceeded)

	svc, err := New(s.reports, s.sanctions, s.directory, content, pgxtx.NewSerialRunner(),
		config.ModerationConfig{
			ReportThreshold:  1,
			DuplicateWindow:  24 * time.Hour,
			EvaluationWindow: 7 * 24 * time.Hour,
			SanctionDuration: 72 * time.Hour,
		},
	)
	s.Require().NoError(err)

	_, err = svc.FileReport(context.Background(), s.input(s.user, models.PostTarget(s.post)))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
