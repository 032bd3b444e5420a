// Package metrics exposes Prometheus instrumentation for the wallet
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	WalletsCreated     prometheus.Counter
	Validations        *prometheus.CounterVec
	Executions         *prometheus.CounterVec
	Faults             *prometheus.CounterVec
	RecoveryEvents     *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	RateLimitedClients prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		WalletsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quorum_wallet_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_wallet_validations_total",
			Help: "Total signature bundle validations by result",
		}, []string{"result"}),
		Executions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_wallet_executions_total",
			Help: "Total execute and execute-batch operations by outcome",
		}, []string{"kind", "outcome"}),
		Faults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_wallet_faults_total",
			Help: "Total engine faults by error code",
		}, []string{"code"}),
		RecoveryEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_wallet_recovery_events_total",
			Help: "Total guardian recovery transitions",
		}, []string{"event"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quorum_wallet_operation_duration_seconds",
			Help:    "End-to-end duration of wallet operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		RateLimitedClients: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quorum_wallet_rate_limited_requests_total",
			Help: "Total requests rejected by the IP rate limiter",
		}),
	}
}

// ObserveValidation records one validation result ("success" or "failed").
func (m *Metrics) ObserveValidation(result string) {
	m.Validations.WithLabelValues(result).Inc()
}

// ObserveExecution records one execution outcome.
func (m *Metrics) ObserveExecution(kind, outcome string) {
	m.Executions.WithLabelValues(kind, outcome).Inc()
}

// ObserveFault records one engine fault by its application error code.
func (m *Metrics) ObserveFault(code string) {
	m.Faults.WithLabelValues(code).Inc()
}

// ObserveRecovery records one recovery transition
// ("initiated", "executed" or "cancelled").
func (m *Metrics) ObserveRecovery(event string) {
	m.RecoveryEvents.WithLabelValues(event).Inc()
}

// ObserveDuration records an operation's wall time.
func (m *Metrics) ObserveDuration(action string, d time.Duration) {
	m.OperationDuration.WithLabelValues(action).Observe(d.Seconds())
}

// IncrementRateLimited counts one rate-limited request.
func (m *Metrics) IncrementRateLimited() {
	m.RateLimitedClients.Inc()
}
