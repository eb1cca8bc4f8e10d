package preview

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records rebuild outcomes and reload clients.
type Metrics struct {
	rebuilds *prom.CounterVec
	duration *prom.HistogramVec
	clients  prom.Gauge
}

// NewMetrics constructs the preview metrics and registers them with reg.
func NewMetrics(reg prom.Registerer) *Metrics {
	m := &Metrics{
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kiln",
			Name:      "rebuilds_total",
			Help:      "Watch-triggered rebuilds by rule and result",
		}, []string{"rule", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kiln",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of watch-triggered rebuilds",
			Buckets:   prom.DefBuckets,
		}, []string{"rule"}),
		clients: prom.NewGauge(prom.GaugeOpts{
			Namespace: "kiln",
			Name:      "preview_clients",
			Help:      "Connected live-reload clients",
		}),
	}
	reg.MustRegister(m.rebuilds, m.duration, m.clients)
	return m
}

// ObserveRebuild implements ports.RebuildObserver.
func (m *Metrics) ObserveRebuild(rule string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.rebuilds.WithLabelValues(rule, result).Inc()
	m.duration.WithLabelValues(rule).Observe(d.Seconds())
}

// SetClients records the number of connected reload clients.
func (m *Metrics) SetClients(n int) {
	m.clients.Set(float64(n))
}
