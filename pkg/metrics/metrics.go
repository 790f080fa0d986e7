// Package metrics provides tour lifecycle instrumentation for tg.
//
// Counters cover tour starts, completions and skips, navigations issued or
// suppressed by the single-flight guard, and highlight targets found or
// missing. Collection is enabled by default but can be disabled via
// TG_METRICS=0, in which case every Recorder method is a no-op.
//
// Usage:
//
//	rec := metrics.New(prometheus.NewRegistry())
//	ctrl := tour.NewController(reg, st, router, port, tour.WithMetrics(rec))
package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// enabled controls whether metrics are collected.
// Defaults to true unless TG_METRICS=0 is set.
var enabled = os.Getenv("TG_METRICS") != "0"

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled = e
}

const namespace = "tourguide"

// Navigation and highlight outcomes used as label values.
const (
	OutcomeIssued     = "issued"
	OutcomeSuppressed = "suppressed"
	OutcomeFound      = "found"
	OutcomeMissing    = "missing"
)

// Recorder holds the tour collectors. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	started     *prometheus.CounterVec
	completed   *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	navigations *prometheus.CounterVec
	highlights  *prometheus.CounterVec
	transitions prometheus.Histogram
}

// New creates a Recorder and registers its collectors with reg. A nil reg
// leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tours_started_total",
			Help:      "Tours that entered the active state.",
		}, []string{"tour"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tours_completed_total",
			Help:      "Tours finished by the last step or by an explicit end.",
		}, []string{"tour"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tours_skipped_total",
			Help:      "Tours abandoned with skip.",
		}, []string{"tour"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Route changes requested by the navigation synchronizer.",
		}, []string{"outcome"}),
		highlights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlight_targets_total",
			Help:      "Step targets looked up by the highlight manager.",
		}, []string{"outcome"}),
		transitions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_transition_seconds",
			Help:      "Time spent applying a step transition, including side effects.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(r.started, r.completed, r.skipped, r.navigations, r.highlights, r.transitions)
	}
	return r
}

func (r *Recorder) active() bool {
	return r != nil && enabled
}

// TourStarted counts a tour entering the active state.
func (r *Recorder) TourStarted(id string) {
	if r.active() {
		r.started.WithLabelValues(id).Inc()
	}
}

// TourCompleted counts a tour completion.
func (r *Recorder) TourCompleted(id string) {
	if r.active() {
		r.completed.WithLabelValues(id).Inc()
	}
}

// TourSkipped counts a skipped tour.
func (r *Recorder) TourSkipped(id string) {
	if r.active() {
		r.skipped.WithLabelValues(id).Inc()
	}
}

// Navigation counts a navigation outcome (OutcomeIssued or OutcomeSuppressed).
func (r *Recorder) Navigation(outcome string) {
	if r.active() {
		r.navigations.WithLabelValues(outcome).Inc()
	}
}

// Highlight counts a highlight lookup outcome (OutcomeFound or OutcomeMissing).
func (r *Recorder) Highlight(outcome string) {
	if r.active() {
		r.highlights.WithLabelValues(outcome).Inc()
	}
}

// Timer returns a function that records elapsed transition time when called.
//
//	defer rec.Timer()()
func (r *Recorder) Timer() func() {
	if !r.active() {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.transitions.Observe(time.Since(start).Seconds())
	}
}
