package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Provisioned  prometheus.Counter
	Skipped      prometheus.Counter
	Failed       prometheus.Counter
	DeadLettered prometheus.Counter

	// Consumer (re)connect attempts by result
	ConnectAttempts *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Provisioned: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_provisioning_teams_provisioned_total",
			Help: "Teams created by the provisioning worker",
		}),
		Skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_provisioning_messages_skipped_total",
			Help: "Messages acknowledged without writes because the user already had a team",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_provisioning_failures_total",
			Help: "Provisioning attempts that aborted and were requeued",
		}),
		DeadLettered: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_provisioning_messages_dead_lettered_total",
			Help: "Messages rejected as poison or after exhausting deliveries",
		}),
		ConnectAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_provisioning_connect_attempts_total",
			Help: "Consumer connection attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementProvisioned() {
	if m != nil {
		m.Provisioned.Inc()
	}
}

func (m *Metrics) IncrementSkipped() {
	if m != nil {
		m.Skipped.Inc()
	}
}

func (m *Metrics) IncrementFailed() {
	if m != nil {
		m.Failed.Inc()
	}
}

func (m *Metrics) IncrementDeadLettered() {
	if m != nil {
		m.DeadLettered.Inc()
	}
}

func (m *Metrics) ObserveConnect(ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.ConnectAttempts.WithLabelValues(result).Inc()
}
