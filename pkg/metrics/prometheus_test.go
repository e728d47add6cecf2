package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(NewPrometheusOptions{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)

	r := gin.New()
	p.Use(r, "")
	r.GET("/api/reports/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, counterValue(t, reg, "req_total", map[string]string{
		"code": "200", "method": "GET", "url": "/api/reports/:id", "ref": "",
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/42", nil)
	req.Header.Set(RefererKey, "dashboard")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 1.0, counterValue(t, reg, "req_total", map[string]string{
		"code": "200", "method": "GET", "url": "/api/reports/:id", "ref": "dashboard",
	}))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "req_total")
}
