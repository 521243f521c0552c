package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIndexed(t *testing.T) {
	m, _ := NewForTesting()

	m.RecordIndexed("main", 3, 3)
	m.RecordIndexed("main", 2, 2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.recordsInserted.WithLabelValues("main")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("main")))
}

func TestRecordQuery(t *testing.T) {
	m, reg := NewForTesting()

	m.RecordQuery("main", OutcomeOK, time.Millisecond)
	m.RecordQuery("main", OutcomeOK, 2*time.Millisecond)
	m.RecordQuery("main", OutcomeInvalid, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("main", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("main", OutcomeInvalid)))

	count, err := testutil.GatherAndCount(reg, "artifact_index_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestForget(t *testing.T) {
	m, reg := NewForTesting()
	m.RecordIndexed("gone", 1, 1)
	m.RecordQuery("gone", OutcomeOK, time.Millisecond)

	m.Forget("gone")

	count, err := testutil.GatherAndCount(reg, "artifact_index_records", "artifact_index_queries_total")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIndexed("main", 1, 1)
		m.RecordQuery("main", OutcomeOK, time.Second)
		m.RecordJob("reindex", "completed", time.Second)
		m.Forget("main")
	})
}
