package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for decisions_total.
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
	OutcomeNoLoan   = "no_loan"
	OutcomeError    = "error"
)

// MetricsCollector owns a private registry so several collectors can live in
// one process (tests, embedded servers). All methods are safe on a nil
// receiver.
type MetricsCollector struct {
	registry         *prometheus.Registry
	decisions        *prometheus.CounterVec
	decisionDuration prometheus.Histogram
	approvedAmount   prometheus.Histogram
	periodExtended   prometheus.Counter
	logger           *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_decisions_total",
			Help: "Total number of loan decisions by outcome",
		}, []string{"outcome"}),
		decisionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loan_decision_duration_seconds",
			Help:    "Time taken to reach a loan decision",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		approvedAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loan_approved_amount_euros",
			Help:    "Distribution of approved loan amounts",
			Buckets: []float64{2000, 3000, 4000, 5000, 6000, 7000, 8000, 9000, 10000},
		}),
		periodExtended: factory.NewCounter(prometheus.CounterOpts{
			Name: "loan_period_extended_total",
			Help: "Approvals granted at a longer period than requested",
		}),
		logger: logger,
	}
}

// RecordDecision counts one decision with the given outcome and its latency.
func (m *MetricsCollector) RecordDecision(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
	m.decisionDuration.Observe(duration.Seconds())
}

// RecordApproval observes the approved amount and whether the period had to
// be extended.
func (m *MetricsCollector) RecordApproval(amount int, extended bool) {
	if m == nil {
		return
	}
	m.approvedAmount.Observe(float64(amount))
	if extended {
		m.periodExtended.Inc()
	}
}

func (m *MetricsCollector) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewMetricsServer builds the /metrics server. The caller owns its lifecycle.
func (m *MetricsCollector) NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
