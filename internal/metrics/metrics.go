package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	evaluationsTotal     *prometheus.CounterVec
	evaluationDuration   prometheus.Histogram
	signalsGenerated     *prometheus.CounterVec
	duplicatesSuppressed *prometheus.CounterVec
	ticksSkipped         *prometheus.CounterVec
	ordersTotal          *prometheus.CounterVec
	backtestsTotal       *prometheus.CounterVec
	backtestDuration     prometheus.Histogram
	strategiesEnabled    prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_evaluations_total",
				Help: "Total number of strategy evaluations",
			},
			[]string{"strategy", "symbol"},
		),
		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradewind_evaluation_duration_seconds",
				Help:    "Per-tick evaluation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_signals_generated_total",
				Help: "Total number of signals generated",
			},
			[]string{"strategy", "action"},
		),
		duplicatesSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_duplicates_suppressed_total",
				Help: "Signals suppressed by fingerprint deduplication",
			},
			[]string{"strategy", "symbol"},
		),
		ticksSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_ticks_skipped_total",
				Help: "Per-unit ticks skipped, by reason",
			},
			[]string{"strategy", "reason"},
		),
		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_orders_total",
				Help: "Orders forwarded to the broker, by outcome",
			},
			[]string{"strategy", "status"},
		),
		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradewind_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		strategiesEnabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradewind_strategies_enabled",
				Help: "Number of enabled strategies",
			},
		),
	}

	reg.MustRegister(r.evaluationsTotal)
	reg.MustRegister(r.evaluationDuration)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.duplicatesSuppressed)
	reg.MustRegister(r.ticksSkipped)
	reg.MustRegister(r.ordersTotal)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.strategiesEnabled)

	return r
}

// RecordEvaluation records one completed strategy evaluation.
func (r *Registry) RecordEvaluation(strategy, symbol string, duration float64) {
	r.evaluationsTotal.WithLabelValues(strategy, symbol).Inc()
	r.evaluationDuration.Observe(duration)
}

// RecordSignal records a generated signal.
func (r *Registry) RecordSignal(strategy, action string) {
	r.signalsGenerated.WithLabelValues(strategy, action).Inc()
}

// RecordDuplicate records a fingerprint-suppressed signal.
func (r *Registry) RecordDuplicate(strategy, symbol string) {
	r.duplicatesSuppressed.WithLabelValues(strategy, symbol).Inc()
}

// RecordSkip records a skipped per-unit tick.
func (r *Registry) RecordSkip(strategy, reason string) {
	r.ticksSkipped.WithLabelValues(strategy, reason).Inc()
}

// RecordOrder records a forwarded order outcome.
func (r *Registry) RecordOrder(strategy, status string) {
	r.ordersTotal.WithLabelValues(strategy, status).Inc()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}

// SetStrategiesEnabled sets the enabled-strategy gauge.
func (r *Registry) SetStrategiesEnabled(count int) {
	r.strategiesEnabled.Set(float64(count))
}
