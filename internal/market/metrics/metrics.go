package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transfer market.
type Metrics struct {
	// Operation outcomes by operation and result code ("ok" on success)
	Operations *prometheus.CounterVec

	// Unit of work latency by operation
	OperationLatency *prometheus.HistogramVec

	// Sum of settlement prices of committed purchases
	SettlementVolume prometheus.Counter

	// Post-commit notification failures
	NotificationFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_market_operations_total",
			Help: "Transfer market operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fantasy_market_operation_duration_seconds",
			Help:    "Duration of transfer market units of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		SettlementVolume: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_market_settlement_volume_total",
			Help: "Total currency moved by committed purchases",
		}),

		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_market_notification_failures_total",
			Help: "PlayerSold notifications that could not be delivered",
		}),
	}
}

// ObserveOperation records the outcome and latency of one operation.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) AddSettlement(amount int64) {
	if m != nil {
		m.SettlementVolume.Add(float64(amount))
	}
}

func (m *Metrics) IncrementNotificationFailures() {
	if m != nil {
		m.NotificationFailures.Inc()
	}
}
