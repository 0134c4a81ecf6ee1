package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// RateMetrics tracks external rate refreshes.
type RateMetrics struct {
	RefreshTotal      *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	CurrenciesUpdated prometheus.Counter
}

// NewRateMetrics creates and registers rate refresh metrics on the given registry.
func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	m := &RateMetrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "refresh_total",
			Help:      "Total number of rate refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of rate refreshes including the external lookup.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CurrenciesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "currencies_updated_total",
			Help:      "Total number of stored currency values changed by refreshes.",
		}),
	}

	reg.MustRegister(m.RefreshTotal, m.RefreshDuration, m.CurrenciesUpdated)
	return m
}

// ObserveRefresh records one refresh that took seconds and changed updated rows.
func (m *RateMetrics) ObserveRefresh(seconds float64, updated int, err error) {
	m.RefreshDuration.Observe(seconds)
	if err != nil {
		m.RefreshTotal.WithLabelValues(RefreshFailure).Inc()
		return
	}
	m.RefreshTotal.WithLabelValues(RefreshSuccess).Inc()
	m.CurrenciesUpdated.Add(float64(updated))
}
