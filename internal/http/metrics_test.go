package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := newHTTPMetrics(mp.Meter(instrumentationName), nil)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/strategies/:file", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "strategy not found")
	})

	for _, target := range []string{"/health", "/strategies/a.pdf", "/strategies/b.pdf"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	requests, ok := byName["strategist.http.requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "requests counter missing")

	counts := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("route"))
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		counts[route.AsString()+" "+status.Emit()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		"/health 200":           1,
		"/strategies/:file 404": 2,
	}, counts)

	hist, ok := byName["strategist.http.request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "duration histogram missing")
	var recorded uint64
	for _, dp := range hist.DataPoints {
		recorded += dp.Count
	}
	assert.Equal(t, uint64(3), recorded)

	assert.Contains(t, byName, "strategist.http.response_size_bytes")
	assert.Contains(t, byName, "strategist.http.active_requests")
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{"/health", "/health"},
		{"/strategies/:file", "/strategies/:file"},
		{"/api/v1/status", "/api/v1/status"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.input))
		})
	}
}
