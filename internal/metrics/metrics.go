package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors. All methods are safe on
// a nil receiver.
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	StoreWrites      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dga_gateway_pipeline_runs_total",
			Help: "Login pipeline runs by terminal stage and outcome",
		}, []string{"stage", "outcome"}),

		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dga_gateway_upstream_duration_seconds",
			Help:    "Duration of calls to the DGA platform",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"call", "outcome"}), // call: validate, deproc, notification

		StoreWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dga_gateway_store_writes_total",
			Help: "Citizen record upserts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementPipeline(stage, outcome string) {
	if m != nil {
		m.PipelineRuns.WithLabelValues(stage, outcome).Inc()
	}
}

func (m *Metrics) ObserveUpstream(call, outcome string, d time.Duration) {
	if m != nil {
		m.UpstreamDuration.WithLabelValues(call, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementStoreWrite(outcome string) {
	if m != nil {
		m.StoreWrites.WithLabelValues(outcome).Inc()
	}
}
