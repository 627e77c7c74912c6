// Package handler exposes report intake over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"commune/internal/moderation/models"
	"commune/internal/moderation/service"
	"commune/internal/platform/middleware"
	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
)

// Service defines the moderation operations the handler delegates to.
type Service interface {
	FileReport(ctx context.Context, in service.FileReportInput) (service.FileReportResult, error)
}

// Handler handles moderation endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	validator middleware.TokenValidator
}

// New creates a moderation Handler.
func New(svc Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		service:   svc,
		validator: validator,
	}
}

// Register registers the moderation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	moderationRouter := chi.NewRouter()
	moderationRouter.Use(chimiddleware.Timeout(30 * time.Second))
	moderationRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	moderationRouter.Post("/reports", h.handleFileReport)

	r.Mount("/moderation", moderationRouter)
}

// FileReportRequest is the report intake payload. The reporter comes from the
// authenticated token, never from the body.
type FileReportRequest struct {
	TerritoryID string `json:"territory_id"`
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	Reason      string `json:"reason"`
	Details     string `json:"details,omitempty"`
}

// FileReportResponse is the intake outcome.
type FileReportResponse struct {
	ReportID     string `json:"report_id"`
	Created      bool   `json:"created"`
	AutoActioned bool   `json:"auto_actioned"`
}

func (h *Handler) handleFileReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reporter, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware")
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req FileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	in, err := h.toInput(reporter, req)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.FileReport(ctx, in)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to file report",
				"target_type", req.TargetType,
				"target_id", req.TargetID,
				"error", err,
			)
		}
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, FileReportResponse{
		ReportID:     result.Report.ID.String(),
		Created:      result.Created,
		AutoActioned: result.AutoActioned,
	})
}

func (h *Handler) toInput(reporter id.UserID, req FileReportRequest) (service.FileReportInput, error) {
	territory, err := id.ParseTerritoryID(req.TerritoryID)
	if err != nil {
		return service.FileReportInput{}, err
	}
	targetType, err := models.ParseTargetType(req.TargetType)
	if err != nil {
		return service.FileReportInput{}, err
	}
	reason, err := models.ParseReportReason(req.Reason)
	if err != nil {
		return service.FileReportInput{}, err
	}
	return service.FileReportInput{
		ReporterID:  reporter,
		TerritoryID: territory,
		Target:      models.Target{Type: targetType, ID: req.TargetID},
		Reason:      reason,
		Details:     req.Details,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
