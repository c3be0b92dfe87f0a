package tracing

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/elasticbuf/verification"
)

// MetricsTracer exports bench activity as Prometheus metrics.
type MetricsTracer struct {
	cycles       prometheus.Counter
	resetCycles  prometheus.Counter
	transfers    *prometheus.CounterVec
	rejected     prometheus.Counter
	backpressure prometheus.Counter
	occupancy    prometheus.Gauge
	occupancyDis prometheus.Histogram
}

// NewMetricsTracer creates the metrics of a bench and registers them. The
// bench name is attached to every metric as a constant label.
func NewMetricsTracer(
	reg prometheus.Registerer,
	bench string,
) *MetricsTracer {
	labels := prometheus.Labels{"bench": bench}

	m := &MetricsTracer{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "elasticbuf",
			Name:        "cycles_total",
			Help:        "Cycles run by the bench, reset included.",
			ConstLabels: labels,
		}),
		resetCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "elasticbuf",
			Name:        "reset_cycles_total",
			Help:        "Cycles with reset asserted.",
			ConstLabels: labels,
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "elasticbuf",
			Name:        "transfers_total",
			Help:        "Completed handshakes by side.",
			ConstLabels: labels,
		}, []string{"kind"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "elasticbuf",
			Name:        "rejected_total",
			Help:        "Cycles in which an offered element was not taken.",
			ConstLabels: labels,
		}),
		backpressure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "elasticbuf",
			Name:        "backpressure_cycles_total",
			Help:        "Cycles in which the consumer refused a valid element.",
			ConstLabels: labels,
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "elasticbuf",
			Name:        "occupancy",
			Help:        "Elements held by the buffer after the last cycle.",
			ConstLabels: labels,
		}),
		occupancyDis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "elasticbuf",
			Name:        "occupancy_cycles",
			Help:        "Distribution of the occupancy over cycles.",
			ConstLabels: labels,
			Buckets:     []float64{0, 1, 2},
		}),
	}

	reg.MustRegister(
		m.cycles,
		m.resetCycles,
		m.transfers,
		m.rejected,
		m.backpressure,
		m.occupancy,
		m.occupancyDis,
	)

	return m
}

// TraceSample updates the metrics.
func (m *MetricsTracer) TraceSample(s verification.Sample) {
	m.cycles.Inc()

	if s.Inputs.Reset {
		m.resetCycles.Inc()
	}

	if s.Transfer.Accepted {
		m.transfers.WithLabelValues("accept").Inc()
	}

	if s.Transfer.Drained {
		m.transfers.WithLabelValues("drain").Inc()
	}

	if s.Rejected() {
		m.rejected.Inc()
	}

	if s.Backpressured() {
		m.backpressure.Inc()
	}

	size := float64(s.State.Size())
	m.occupancy.Set(size)
	m.occupancyDis.Observe(size)
}

// Terminate does nothing. The metrics stay registered.
func (m *MetricsTracer) Terminate() {}
