package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := New("session")

	e := echo.New()
	e.Use(m.Middleware())
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	families, err := m.registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]bool)
	for _, family := range families {
		byName[family.GetName()] = true

		if family.GetName() == "authsvc_http_requests_total" {
			require.Len(t, family.GetMetric(), 1)
			metric := family.GetMetric()[0]
			assert.Equal(t, float64(3), metric.GetCounter().GetValue())

			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			assert.Equal(t, "/login", labels["operation"])
			assert.Equal(t, "200", labels["status"])
			assert.Equal(t, "session", labels["strategy"])
		}
	}

	assert.True(t, byName["authsvc_http_requests_total"])
	assert.True(t, byName["authsvc_http_request_duration_seconds"])
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	m := New("token")

	e := echo.New()
	e.Use(m.Middleware())
	e.POST("/login", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "nope")
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	families, err := m.registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "authsvc_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "status" {
					assert.Equal(t, "401", pair.GetValue())
				}
			}
		}
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New("session")
	m.duration.WithLabelValues("/login").Observe(0.05)

	e := echo.New()
	e.GET("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "authsvc_http_request_duration_seconds")
}
