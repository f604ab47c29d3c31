package jobmetrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("sessions:cleanup").End(nil))
	boom := errors.New("boom")
	assert.Equal(t, boom, m.Track("sessions:cleanup").End(boom))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:cleanup", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:cleanup", StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("sessions:cleanup")))
}

func TestSkippedRunsAreNotFailures(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	err := fmt.Errorf("decode payload: %w", asynq.SkipRetry)

	assert.ErrorIs(t, m.Track("summaries:monthly").End(err), asynq.SkipRetry)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("summaries:monthly", StatusSkipped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.failures.WithLabelValues("summaries:monthly")))
}

func TestLastSuccessTimestamp(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	finished := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)

	tr := m.Track("summaries:monthly")
	tr.now = func() time.Time { return finished }
	assert.NoError(t, tr.End(nil))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("summaries:monthly")))

	tr = m.Track("summaries:monthly")
	tr.now = func() time.Time { return finished.Add(time.Hour) }
	_ = tr.End(errors.New("db down"))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("summaries:monthly")))
}

func TestAddRowsIgnoresEmptyRuns(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddRows("summaries:monthly", 0)
	m.AddRows("summaries:monthly", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.rows.WithLabelValues("summaries:monthly")))

	var nilMetrics *Metrics
	nilMetrics.AddRows("x", 1)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
