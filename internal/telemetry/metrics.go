package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authnTotal  *prometheus.CounterVec
	authzTotal  *prometheus.CounterVec
	secretOps   *prometheus.CounterVec
	metricsOnce sync.Once
)

// Outcome labels recorded on gateway metrics.
const (
	OutcomeOK       = "ok"
	OutcomeDenied   = "denied"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// InitMetrics registers the gateway's Prometheus metrics with the default
// registry. Safe to call more than once; registration happens on the first
// call only. Recording before InitMetrics is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		authnTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultd_authentication_total",
				Help: "Total credential verification attempts by outcome",
			},
			[]string{"outcome"},
		)

		authzTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultd_authorization_total",
				Help: "Total permission checks by required permission and outcome",
			},
			[]string{"permission", "outcome"},
		)

		secretOps = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultd_secret_operations_total",
				Help: "Total secret store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		)
	})
}

// RecordAuthentication counts one credential verification attempt.
func RecordAuthentication(outcome string) {
	if authnTotal == nil {
		return
	}
	authnTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthorization counts one permission check.
func RecordAuthorization(permission, outcome string) {
	if authzTotal == nil {
		return
	}
	authzTotal.WithLabelValues(permission, outcome).Inc()
}

// RecordSecretOperation counts one secret store operation.
func RecordSecretOperation(operation, outcome string) {
	if secretOps == nil {
		return
	}
	secretOps.WithLabelValues(operation, outcome).Inc()
}
