package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	m := Init(false)
	_, ok := m.(*NoopMetrics)
	assert.True(t, ok)

	m.RecordActivation("standard", "bound")
	m.RecordGatewayCall("mint", false, time.Second)
}

func TestInitEnabledRecords(t *testing.T) {
	m := Init(true)
	prom, ok := m.(*Metrics)
	require.True(t, ok)
	assert.Same(t, prom, Init(true), "collectors are registered once")

	before := testutil.ToFloat64(prom.ActivationsTotal.WithLabelValues("standard", "reused"))
	m.RecordActivation("standard", "reused")
	assert.Equal(t, before+1, testutil.ToFloat64(prom.ActivationsTotal.WithLabelValues("standard", "reused")))

	issued := testutil.ToFloat64(prom.LicensesIssuedTotal)
	m.RecordLicensesIssued(5)
	assert.Equal(t, issued+5, testutil.ToFloat64(prom.LicensesIssuedTotal))

	failures := testutil.ToFloat64(prom.GatewayCallsTotal.WithLabelValues("unpack", resultError))
	m.RecordGatewayCall("unpack", false, 10*time.Millisecond)
	assert.Equal(t, failures+1, testutil.ToFloat64(prom.GatewayCallsTotal.WithLabelValues("unpack", resultError)))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/v1/licenses/:userId", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/licenses/:userId", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/licenses/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/licenses/:userId", "200")))
}
