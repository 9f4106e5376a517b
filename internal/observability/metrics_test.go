package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_SnapshotCopiesCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/documents", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/documents", "GET", 200, 30*time.Millisecond)
	m.RecordError("/documents", "POST", "VALIDATION_FAILED")
	m.RecordEvent("document_created")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/documents|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/documents|POST|VALIDATION_FAILED"])
	assert.Equal(t, int64(1), snap.Events["document_created"])
	assert.InDelta(t, 20.0, snap.AvgLatencyMilli, 0.001)

	snap.Requests["/documents|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/documents|GET|200"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordEvent("x")
}
