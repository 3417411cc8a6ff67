package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal    *prometheus.CounterVec
	ticksRejected *prometheus.CounterVec
	evaluations   *prometheus.CounterVec
	conditions    *prometheus.CounterVec
	signals       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_ticks_total",
				Help: "Total number of price ticks recorded",
			},
			[]string{"symbol"},
		),
		ticksRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_ticks_rejected_total",
				Help: "Total number of price ticks rejected before storage",
			},
			[]string{"symbol", "reason"},
		),
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_evaluations_total",
				Help: "Total number of evaluation ticks by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		conditions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_conditions_total",
				Help: "Per-condition evaluation outcomes",
			},
			[]string{"condition", "outcome"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_signals_total",
				Help: "Total number of emitted signal events",
			},
			[]string{"symbol", "strength"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lagscalper_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lagscalper_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lagscalper_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTick records a stored price tick.
func (r *Recorder) RecordTick(symbol string) {
	r.ticksTotal.WithLabelValues(symbol).Inc()
}

// RecordTickRejected records a dropped tick and why.
func (r *Recorder) RecordTickRejected(symbol, reason string) {
	r.ticksRejected.WithLabelValues(symbol, reason).Inc()
}

// RecordEvaluation records the overall outcome of an evaluation tick.
func (r *Recorder) RecordEvaluation(symbol, outcome string) {
	r.evaluations.WithLabelValues(symbol, outcome).Inc()
}

// RecordCondition records a single condition outcome.
func (r *Recorder) RecordCondition(name, outcome string) {
	r.conditions.WithLabelValues(name, outcome).Inc()
}

// RecordSignal records an emitted signal event.
func (r *Recorder) RecordSignal(symbol, strength string) {
	r.signals.WithLabelValues(symbol, strength).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
