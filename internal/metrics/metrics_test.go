package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition_LabelsEmptyFromAsNone(t *testing.T) {
	before := testutil.ToFloat64(StatusTransitionsTotal.WithLabelValues("tenant", "none", "active"))

	RecordTransition("tenant", "", "active")

	after := testutil.ToFloat64(StatusTransitionsTotal.WithLabelValues("tenant", "none", "active"))
	assert.Equal(t, before+1, after)
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/properties/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", Handler())

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/properties/:id", "200")
	before := testutil.ToFloat64(counter)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/properties/abc", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rentflow_http_requests_total")
}
