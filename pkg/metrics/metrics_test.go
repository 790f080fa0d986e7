package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.TourStarted("intro")
	r.TourStarted("intro")
	r.TourCompleted("intro")
	r.TourSkipped("budget")
	r.Navigation(OutcomeIssued)
	r.Navigation(OutcomeSuppressed)
	r.Navigation(OutcomeSuppressed)
	r.Highlight(OutcomeMissing)
	r.Timer()()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.started.WithLabelValues("intro")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.completed.WithLabelValues("intro")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skipped.WithLabelValues("budget")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.navigations.WithLabelValues(OutcomeSuppressed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.highlights.WithLabelValues(OutcomeMissing)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.TourStarted("x")
	r.TourCompleted("x")
	r.TourSkipped("x")
	r.Navigation(OutcomeIssued)
	r.Highlight(OutcomeFound)
	r.Timer()()
}

func TestDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	r := New(nil)
	r.TourStarted("intro")
	assert.Equal(t, 0.0, testutil.ToFloat64(r.started.WithLabelValues("intro")))
	assert.False(t, Enabled())
}
