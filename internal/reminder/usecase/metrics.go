package usecase

import (
	"reminders-backend/internal/reminder/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatch runs and per-user outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	runs          *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Reminder dispatch invocations by result.",
		}, []string{"kind", "slot", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_notifications_total",
			Help: "Per-user reminder outcomes.",
		}, []string{"kind", "slot", "status"}),
	}
	reg.MustRegister(m.runs, m.notifications)
	return m
}

func (m *Metrics) observeRun(req domain.Request, result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(req.Kind), string(req.Slot), result).Inc()
}

func (m *Metrics) observeSummary(req domain.Request, s *domain.Summary) {
	if m == nil {
		return
	}
	for status, n := range map[domain.OutcomeStatus]int{
		domain.OutcomeSent:    s.Sent,
		domain.OutcomeSkipped: s.Skipped,
		domain.OutcomeFailed:  s.Failed,
	} {
		m.notifications.WithLabelValues(string(req.Kind), string(req.Slot), string(status)).Add(float64(n))
	}
}
