package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementIDsGenerated()
	m.IncrementIDsGenerated()
	m.ObserveTimestampDecode(true)
	m.ObserveTimestampDecode(false)
	m.ObserveCodeRecognition("lowcode", true)
	m.ObserveRecord("kafka", errors.New("boom"))
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/ids", http.StatusCreated, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IDsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TimestampsDecoded.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TimestampsDecoded.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodesRecognized.WithLabelValues("lowcode", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsProcessed.WithLabelValues("kafka", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/ids", "201")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementIDsGenerated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fieldnorm_ids_generated_total 1")
}
