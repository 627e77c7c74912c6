package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"commune/internal/moderation/handler/mocks"
	"commune/internal/moderation/models"
	"commune/internal/moderation/service"
	"commune/internal/ops"
	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
	"commune/pkg/testutil"
)

type ModerationHandlerSuite struct {
	suite.Suite

	reporter  id.UserID
	territory id.TerritoryID
	post      id.PostID
	tokens    *ops.TokenService
}

func (s *ModerationHandlerSuite) SetupSuite() {
	s.reporter = id.NewUserID()
	s.territory = id.NewTerritoryID()
	s.post = id.NewPostID()
	s.tokens = ops.NewTokenService("moderation-handler-test-key")
}

func TestModerationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ModerationHandlerSuite))
}

func (s *ModerationHandlerSuite) newRouter() (chi.Router, *mocks.MockService) {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger, ops.NewMiddlewareAdapter(s.tokens)).Register(r)
	return r, mockService
}

func (s *ModerationHandlerSuite) bearer() string {
	token, err := s.tokens.GenerateServiceToken(s.reporter.String(), time.Minute)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *ModerationHandlerSuite) validBody() FileReportRequest {
	return FileReportRequest{
		TerritoryID: s.territory.String(),
		TargetType:  "post",
		TargetID:    s.post.String(),
		Reason:      "spam",
	}
}

func (s *ModerationHandlerSuite) TestFileReportCreated() {
	router, mockService := s.newRouter()
	report := models.Report{ID: id.NewReportID()}
	mockService.EXPECT().
		FileReport(gomock.Any(), service.FileReportInput{
			ReporterID:  s.reporter,
			TerritoryID: s.territory,
			Target:      models.Target{Type: models.TargetPost, ID: s.post.String()},
			Reason:      models.ReasonSpam,
		}).
		Return(service.FileReportResult{Created: true, Report: report}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
	req.Header.Set("Authorization", s.bearer())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[FileReportResponse](s.T(), rr)
	s.Equal(report.ID.String(), resp.ReportID)
	s.True(resp.Created)
	s.False(resp.AutoActioned)
}

func (s *ModerationHandlerSuite) TestDuplicateReportReturnsOK() {
	router, mockService := s.newRouter()
	report := models.Report{ID: id.NewReportID()}
	mockService.EXPECT().
		FileReport(gomock.Any(), gomock.Any()).
		Return(service.FileReportResult{Created: false, Report: report}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
	req.Header.Set("Authorization", s.bearer())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[FileReportResponse](s.T(), rr)
	s.Equal(report.ID.String(), resp.ReportID)
	s.False(resp.Created)
}

func (s *ModerationHandlerSuite) TestRequiresAuthentication() {
	router, _ := s.newRouter()

	s.Run("missing token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("garbage token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("expired token", func() {
		token, err := s.tokens.GenerateServiceToken(s.reporter.String(), -time.Minute)
		s.Require().NoError(err)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *ModerationHandlerSuite) TestMalformedBodyRejected() {
	router, _ := s.newRouter()

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/moderation/reports", "{not json")
	req.Header.Set("Authorization", s.bearer())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *ModerationHandlerSuite) TestInvalidFieldsRejected() {
	router, _ := s.newRouter()

	cases := map[string]FileReportRequest{
		"bad territory id": func() FileReportRequest {
			b := s.validBody()
			b.TerritoryID = "not-a-uuid"
			return b
		}(),
		"unknown target type": func() FileReportRequest {
			b := s.validBody()
			b.TargetType = "comment"
			return b
		}(),
		"unknown reason": func() FileReportRequest {
			b := s.validBody()
			b.Reason = "grumpy"
			return b
		}(),
	}

	for name, body := range cases {
		s.Run(name, func() {
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", body)
			req.Header.Set("Authorization", s.bearer())
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		})
	}
}

func (s *ModerationHandlerSuite) TestServiceErrorsMapToStatus() {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown target", dErrors.New(dErrors.CodeNotFound, "target not found"), http.StatusNotFound},
		{"store down", dErrors.New(dErrors.CodeUnavailable, "report store unavailable"), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			router, mockService := s.newRouter()
			mockService.EXPECT().
				FileReport(gomock.Any(), gomock.Any()).
				Return(service.FileReportResult{}, tc.err)

			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/moderation/reports", s.validBody())
			req.Header.Set("Authorization", s.bearer())
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatus(s.T(), rr, tc.status)
		})
	}
}
