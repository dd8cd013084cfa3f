package internalhttp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	recommendations *prometheus.CounterVec
	feedback        *prometheus.CounterVec
	simulations     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genre_bandit_recommendations_total",
			Help: "Recommendations handed to live sessions by policy and genre.",
		}, []string{"policy", "genre"}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genre_bandit_feedback_total",
			Help: "Observed live feedback by policy and reward.",
		}, []string{"policy", "reward"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genre_bandit_simulations_total",
			Help: "Finished simulation runs by policy.",
		}, []string{"policy"}),
	}

	reg.MustRegister(m.recommendations, m.feedback, m.simulations)

	return m
}

func (m *Metrics) recommended(policy string, genre string) {
	m.recommendations.WithLabelValues(policy, genre).Inc()
}

func (m *Metrics) observed(policy string, reward int) {
	m.feedback.WithLabelValues(policy, strconv.Itoa(reward)).Inc()
}

func (m *Metrics) simulated(policy string) {
	m.simulations.WithLabelValues(policy).Inc()
}
