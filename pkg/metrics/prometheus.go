package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	settlements  *prometheus.CounterVec
	pointsTotal  prometheus.Counter
	dateStatus   *prometheus.CounterVec
	sweepSeconds prometheus.Histogram
	sweepDates   prometheus.Gauge
	jobSkips     *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder's collectors on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		settlements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpredict_settlements_total",
				Help: "Predictions processed by the settlement engine, by outcome",
			},
			[]string{"status"},
		),
		pointsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "goldpredict_points_awarded_total",
				Help: "Points awarded by settlement",
			},
		),
		dateStatus: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpredict_settlement_dates_total",
				Help: "Settlement dates visited by sweeps, by status",
			},
			[]string{"status"},
		),
		sweepSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goldpredict_sweep_duration_seconds",
				Help:    "Duration of settlement sweeps in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		sweepDates: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "goldpredict_sweep_pending_dates",
				Help: "Pending dates seen by the last sweep",
			},
		),
		jobSkips: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpredict_job_skips_total",
				Help: "Scheduler ticks skipped because the previous run was still active",
			},
			[]string{"job"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpredict_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goldpredict_last_gold_price",
				Help: "Last ingested XAU/USD price",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goldpredict_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSettlement records one settlement unit and the points it awarded.
func (r *Recorder) RecordSettlement(status string, points int) {
	r.settlements.WithLabelValues(status).Inc()
	if points > 0 {
		r.pointsTotal.Add(float64(points))
	}
}

func (r *Recorder) RecordSweep(seconds float64, dates int) {
	r.sweepSeconds.Observe(seconds)
	r.sweepDates.Set(float64(dates))
}

func (r *Recorder) RecordDateStatus(status string) {
	r.dateStatus.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordJobSkip(job string) {
	r.jobSkips.WithLabelValues(job).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last ingested price.
func (r *Recorder) RecordLastPrice(source string, price float64) {
	r.lastPrice.WithLabelValues(source).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
