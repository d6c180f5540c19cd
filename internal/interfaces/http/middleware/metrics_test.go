package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetrics(t *testing.T) {
	mp, reader := setupTestMeter(t)
	mw, err := HTTPMetrics(mp.Meter("http.server"))
	require.NoError(t, err)

	r := newTestEngine(mw)
	r.GET("/api/products/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	})

	perform(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/api/products/4f1c", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/api/products/9a2e", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	got := collectMetrics(t, reader)

	total, ok := got["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byRoute := map[string]int64{}
	statusByRoute := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
		byRoute[route.AsString()] += dp.Value
		statusByRoute[route.AsString()] = status.AsInt64()
	}
	assert.Equal(t, map[string]int64{"/test": 1, "/api/products/:id": 2, "unknown": 1}, byRoute)
	assert.Equal(t, int64(http.StatusNotFound), statusByRoute["/api/products/:id"])
	assert.Equal(t, int64(http.StatusOK), statusByRoute["/test"])

	duration, ok := got["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range duration.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(4), count)

	active, ok := got["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, active.DataPoints, 1)
	assert.Zero(t, active.DataPoints[0].Value)

	_, ok = got["http_server_response_size_bytes"]
	assert.True(t, ok)
}
