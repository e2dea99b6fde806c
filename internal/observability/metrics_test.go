package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", 200, time.Millisecond)
		m.ApiInflightInc()
		m.ApiInflightDec()
		m.IncRecipeWrite("create")
		m.ObserveSearch("any", 1, nil)
		m.IncExport("pdf", nil)
		m.IncAuthEvent("login", nil)
		m.SetBreakerState("api", 0)
	})
	assert.Nil(t, m.Registry())
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveAPI("GET", "/api/recipes", 200, 5*time.Millisecond)
	m.ObserveAPI("GET", "/api/recipes", 200, 5*time.Millisecond)
	m.IncRecipeWrite("create")
	m.ObserveSearch("all", 0, nil)
	m.IncExport("pdf", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/api/recipes", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recipeWrites.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("all", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("pdf", "error")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("test")
	m.IncAuthEvent("login", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_auth_events_total{event="login",outcome="ok"} 1`)
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ParseHeaders(" a=1, b=2 ,bad, =x"))
	assert.Nil(t, ParseHeaders(""))
}
