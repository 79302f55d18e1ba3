package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	submissions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
}

// New creates the counters and registers them with registerer when it is
// not nil.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payee_confirmation_submissions_total",
			Help: "Submission attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payee_confirmation_notifications_total",
			Help: "Confirmation notifications by result.",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payee_confirmation_batch_uploads_total",
			Help: "Batch uploads by result.",
		}, []string{"result"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payee_confirmation_reconciliations_total",
			Help: "Reconciliation runs by kind.",
		}, []string{"kind"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.submissions, m.notifications, m.uploads, m.reconciliations)
	}
	return m
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) Reconciliation(kind string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(kind).Inc()
}
