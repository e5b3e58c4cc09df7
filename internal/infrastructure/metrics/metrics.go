package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/fintrack/internal/domain"
)

// Metrics holds the ledger's Prometheus collectors. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	// Account metrics
	AccountsCreated *prometheus.CounterVec

	// Transaction metrics
	TransactionsCommitted prometheus.Counter
	TransactionsRejected  *prometheus.CounterVec
	TransactionEntries    prometheus.Histogram
	CommitDuration        prometheus.Histogram

	// Outbox metrics
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_accounts_created_total",
				Help: "Total number of accounts created by classification",
			},
			[]string{"type"},
		),

		TransactionsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_committed_total",
			Help: "Total number of committed transactions",
		}),
		TransactionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_transactions_rejected_total",
				Help: "Total number of rejected submissions by reason",
			},
			[]string{"reason"},
		),
		TransactionEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_transaction_entries",
			Help:    "Number of entries per committed transaction",
			Buckets: []float64{2, 3, 4, 6, 8, 12, 16, 32},
		}),
		CommitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_commit_duration_seconds",
			Help:    "Duration of the atomic commit step",
			Buckets: prometheus.DefBuckets,
		}),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_outbox_events_published_total",
			Help: "Total number of outbox events published",
		}),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_outbox_publish_errors_total",
			Help: "Total number of failed outbox publish attempts",
		}),
	}
}

// AccountCreated counts a new account.
func (m *Metrics) AccountCreated(t domain.AccountType) {
	m.AccountsCreated.WithLabelValues(string(t)).Inc()
}

// TransactionCommitted records a successful commit.
func (m *Metrics) TransactionCommitted(entries int, took time.Duration) {
	m.TransactionsCommitted.Inc()
	m.TransactionEntries.Observe(float64(entries))
	m.CommitDuration.Observe(took.Seconds())
}

// TransactionRejected counts a rejected submission.
func (m *Metrics) TransactionRejected(reason string) {
	m.TransactionsRejected.WithLabelValues(reason).Inc()
}

// EventPublished counts a delivered outbox event.
func (m *Metrics) EventPublished() {
	m.EventsPublished.Inc()
}

// EventPublishFailed counts a failed delivery attempt.
func (m *Metrics) EventPublishFailed() {
	m.PublishErrors.Inc()
}
