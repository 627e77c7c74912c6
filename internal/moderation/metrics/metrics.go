package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the moderation module.
type Metrics struct {
	ReportsFiled      *prometheus.CounterVec
	DuplicateReports  prometheus.Counter
	AutoActions       *prometheus.CounterVec
	FileReportLatency prometheus.Histogram
}

// New creates a Metrics instance with all moderation metrics registered.
func New() *Metrics {
	return &Metrics{
		ReportsFiled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "commune_moderation_reports_filed_total",
			Help: "Counted reports by reason and target type",
		}, []string{"reason", "target_type"}),

		DuplicateReports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commune_moderation_duplicate_reports_total",
			Help: "Reports suppressed by the duplicate window",
		}),

		AutoActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "commune_moderation_auto_actions_total",
			Help: "Automatic threshold actions by target type",
		}, []string{"target_type"}),

		FileReportLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commune_moderation_file_report_duration_seconds",
			Help:    "Duration of the full report intake pipeline",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementReportFiled records one counted report.
func (m *Metrics) IncrementReportFiled(reason, targetType string) {
	if m != nil {
		m.ReportsFiled.WithLabelValues(reason, targetType).Inc()
	}
}

// IncrementDuplicate records one suppressed duplicate.
func (m *Metrics) IncrementDuplicate() {
	if m != nil {
		m.DuplicateReports.Inc()
	}
}

// IncrementAutoAction records one threshold auto-action.
func (m *Metrics) IncrementAutoAction(targetType string) {
	if m != nil {
		m.AutoActions.WithLabelValues(targetType).Inc()
	}
}

// ObserveFileReportLatency records the intake pipeline duration.
func (m *Metrics) ObserveFileReportLatency(d time.Duration) {
	if m != nil {
		m.FileReportLatency.Observe(d.Seconds())
	}
}
