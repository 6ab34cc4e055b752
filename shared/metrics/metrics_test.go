package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("queued")
	c.RecordRequest("queued")
	c.RecordRequest("publish_failed")
	c.RecordStatusUpdate("COMPLETED")
	c.RecordMessage(OutcomeRetried, 10*time.Millisecond)
	c.RecordMessage(OutcomeDeadLettered, 10*time.Millisecond)
	c.RecordTranslatorAttempt("rate_limited")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("publish_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.statusUpdates.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.messages.WithLabelValues(OutcomeDeadLettered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.translatorAttempt.WithLabelValues("rate_limited")))
}

func TestCollector_TrackInFlight(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	done := c.TrackInFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.inFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.inFlight))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordRequest("queued")
		c.RecordStatusUpdate("FAILED")
		c.RecordMessage(OutcomeCompleted, time.Second)
		c.RecordTranslatorAttempt("ok")
		c.TrackInFlight()()
	})
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordRequest("queued")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `translate_requests_total{outcome="queued"} 1`)
}
