// Package service implements report intake and the threshold engine: counted
// reports, distinct-reporter aggregation, and the exactly-once automatic
// action when the threshold is crossed.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"commune/internal/moderation/metrics"
	"commune/internal/moderation/models"
	"commune/internal/moderation/ports"
	"commune/internal/platform/config"
	id "commune/pkg/domain"
	dErrors "commune/pkg/domain-errors"
	"commune/pkg/platform/audit"
	"commune/pkg/requestcontext"
)

const maxDetailsLength = 2000

// Service is the report aggregation and threshold engine.
type Service struct {
	reports   ports.ReportStore
	sanctions ports.SanctionStore
	targets   ports.TargetLookup
	content   ports.ContentModeration
	tx        ports.TxRunner
	events    ports.EventPublisher
	auditor   ports.AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cfg       config.ModerationConfig
	tracer    trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for best-effort failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher sets the audit sink. Audit failures are logged and
// swallowed; the trail is observability, not a correctness dependency.
func WithAuditPublisher(auditor ports.AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// WithEventPublisher sets the event bus producer for ReportCreated and
// auto-action notifications.
func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// New constructs the service. Stores, target lookup, content port, and the
// transaction runner are required; an absent one is a wiring error.
func New(
	reports ports.ReportStore,
	sanctions ports.SanctionStore,
	targets ports.TargetLookup,
	content ports.ContentModeration,
	tx ports.TxRunner,
	cfg config.ModerationConfig,
	opts ...Option,
) (*Service, error) {
	if reports == nil {
		return nil, fmt.Errorf("report store is required")
	}
	if sanctions == nil {
		return nil, fmt.Errorf("sanction store is required")
	}
	if targets == nil {
		return nil, fmt.Errorf("target lookup is required")
	}
	if content == nil {
		return nil, fmt.Errorf("content moderation port is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if cfg.ReportThreshold < 1 {
		return nil, fmt.Errorf("report threshold must be at least 1")
	}

	s := &Service{
		reports:   reports,
		sanctions: sanctions,
		targets:   targets,
		content:   content,
		tx:        tx,
		cfg:       cfg,
		tracer:    otel.Tracer("commune/moderation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FileReportInput carries one report intake request.
type FileReportInput struct {
	ReporterID  id.UserID
	TerritoryID id.TerritoryID
	Target      models.Target
	Reason      models.ReportReason
	Details     string
}

// FileReportResult is the intake outcome. Created is false for duplicates
// within the suppression window; AutoActioned is true only on the request
// that crossed the threshold.
type FileReportResult struct {
	Created      bool
	Report       models.Report
	AutoActioned bool
}

// FileReport validates, persists, and aggregates one report, and applies the
// automatic action exactly once when the distinct-reporter threshold is
// crossed. Steps from persistence through auto-action run in one transaction:
// a failure (or cancellation) anywhere leaves no partial state.
func (s *Service) FileReport(ctx context.Context, in FileReportInput) (FileReportResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveFileReportLatency(time.Since(start)) }()

	ctx, span := s.tracer.Start(ctx, "moderation.FileReport", trace.WithAttributes(
		attribute.String("moderation.target_type", in.Target.Type.String()),
		attribute.String("moderation.target_id", in.Target.ID),
	))
	defer span.End()

	if err := s.validate(in); err != nil {
		return FileReportResult{}, err
	}

	exists, err := s.targets.TargetExists(ctx, in.Target, in.TerritoryID)
	if err != nil {
		return FileReportResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "target lookup unreachable")
	}
	if !exists {
		return FileReportResult{}, dErrors.New(dErrors.CodeNotFound, "report target does not exist")
	}

	now := requestcontext.Now(ctx).UTC()
	var result FileReportResult

	err = s.tx.Run(ctx, func(ctx context.Context) error {
		existing, err := s.reports.FindRecentByReporter(ctx, in.ReporterID, in.Target, now.Add(-s.cfg.DuplicateWindow))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "report store unreachable")
		}
		if existing != nil {
			// Idempotent re-report: accepted silently, no new row, no count.
			result = FileReportResult{Created: false, Report: *existing}
			s.metrics.IncrementDuplicate()
			return nil
		}

		report := models.Report{
			ID:          id.NewReportID(),
			ReporterID:  in.ReporterID,
			TerritoryID: in.TerritoryID,
			Target:      in.Target,
			Reason:      in.Reason,
			Details:     in.Details,
			Status:      models.ReportOpen,
			CreatedAt:   now,
		}
		if err := s.reports.Insert(ctx, report); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report")
		}
		result = FileReportResult{Created: true, Report: report}

		s.emitAudit(ctx, audit.Event{
			Action:      audit.ActionReportFiled,
			ActorID:     in.ReporterID,
			TerritoryID: in.TerritoryID,
			TargetType:  in.Target.Type.String(),
			TargetID:    in.Target.ID,
			Reason:      in.Reason.String(),
		})
		s.metrics.IncrementReportFiled(in.Reason.String(), in.Target.Type.String())

		distinct, err := s.reports.CountDistinctReporters(ctx, in.Target, now.Add(-s.cfg.EvaluationWindow))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "report store unreachable")
		}
		if distinct < s.cfg.ReportThreshold {
			return nil
		}

		acted, err := s.applyAutoAction(ctx, in, now)
		if err != nil {
			// Surfaced so the enclosing transaction rolls back: a report
			// must not commit without its consequent action.
			return err
		}
		result.AutoActioned = acted
		return nil
	})
	if err != nil {
		return FileReportResult{}, err
	}

	s.publishEvents(ctx, result, in, now)
	return result, nil
}

// applyAutoAction performs the one-time threshold consequence. The conditional
// writes (hide-if-visible, create-if-none-active) are the idempotency guards:
// once the threshold has been acted on, later crossings observe "already
// done" and stop silently.
func (s *Service) applyAutoAction(ctx context.Context, in FileReportInput, now time.Time) (bool, error) {
	switch in.Target.Type {
	case models.TargetPost:
		postID, err := id.ParsePostID(in.Target.ID)
		if err != nil {
			return false, err
		}
		hidden, err := s.content.HidePost(ctx, postID)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to hide post")
		}
		if !hidden {
			return false, nil
		}
		s.emitAudit(ctx, audit.Event{
			Action:      audit.ActionThresholdPost,
			TerritoryID: in.TerritoryID,
			TargetType:  in.Target.Type.String(),
			TargetID:    in.Target.ID,
			Decision:    "post_hidden",
			Reason:      fmt.Sprintf("distinct reporters reached %d", s.cfg.ReportThreshold),
		})
		s.metrics.IncrementAutoAction(in.Target.Type.String())
		return true, nil

	case models.TargetUser:
		userID, err := id.ParseUserID(in.Target.ID)
		if err != nil {
			return false, err
		}
		sanction := models.Sanction{
			ID:          id.NewSanctionID(),
			TerritoryID: in.TerritoryID,
			Target:      models.UserTarget(userID),
			Type:        models.SanctionSuspension,
			Status:      models.SanctionActive,
			StartsAt:    now,
			EndsAt:      now.Add(s.cfg.SanctionDuration),
		}
		created, err := s.sanctions.CreateIfNoneActive(ctx, sanction)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create sanction")
		}
		if !created {
			return false, nil
		}
		s.emitAudit(ctx, audit.Event{
			Action:      audit.ActionThresholdUser,
			TerritoryID: in.TerritoryID,
			TargetType:  in.Target.Type.String(),
			TargetID:    in.Target.ID,
			Decision:    "user_suspended",
			Reason:      fmt.Sprintf("distinct reporters reached %d", s.cfg.ReportThreshold),
		})
		s.metrics.IncrementAutoAction(in.Target.Type.String())
		return true, nil
	}
	return false, dErrors.New(dErrors.CodeInvalidInput, "invalid target type")
}

// publishEvents emits domain events after the transaction commits. The bus is
// at-least-once and downstream consumers tolerate gaps (the audit trail is
// the durable record), so publish failures are logged, not returned.
func (s *Service) publishEvents(ctx context.Context, result FileReportResult, in FileReportInput, now time.Time) {
	if s.events == nil || !result.Created {
		return
	}
	created := models.ReportCreated{
		ReportID:      result.Report.ID.String(),
		TerritoryID:   in.TerritoryID.String(),
		ReporterID:    in.ReporterID.String(),
		OccurredAtUTC: now,
	}
	s.publish(ctx, models.TopicReportCreated, result.Report.ID.String(), created)

	if result.AutoActioned {
		action := "post_hidden"
		if in.Target.Type == models.TargetUser {
			action = "user_suspended"
		}
		applied := models.AutoActionApplied{
			TargetType:    in.Target.Type.String(),
			TargetID:      in.Target.ID,
			TerritoryID:   in.TerritoryID.String(),
			Action:        action,
			OccurredAtUTC: now,
		}
		s.publish(ctx, models.TopicAutoActionApplied, in.Target.ID, applied)
	}
}

func (s *Service) publish(ctx context.Context, topic, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to marshal domain event", "topic", topic, "error", err)
		}
		return
	}
	if err := s.events.Publish(ctx, topic, []byte(key), value); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish domain event", "topic", topic, "error", err)
	}
}

func (s *Service) validate(in FileReportInput) error {
	if in.ReporterID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "reporter id is required")
	}
	if in.TerritoryID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "territory id is required")
	}
	if err := in.Target.Validate(); err != nil {
		return err
	}
	if !in.Reason.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid reason is required")
	}
	if len(in.Details) > maxDetailsLength {
		return dErrors.New(dErrors.CodeInvalidInput, "details exceed maximum length")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
