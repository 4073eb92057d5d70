package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/metrics"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/tpvapi"
)

var (
	_ ports.PosMetrics       = (*metrics.Metrics)(nil)
	_ tpvapi.RequestObserver = (*metrics.Metrics)(nil)
)

func TestMetrics_Contadores(t *testing.T) {
	m := metrics.New()
	m.ScanObserved("lector", "ok")
	m.ScanObserved("lector", "ok")
	m.ScanObserved("movil", "not_found")
	m.SaleObserved("rejected")
	m.ObserveRequest("venta", "ok", 0.12)

	n, err := testutil.GatherAndCount(m.Registry(), "tpv_caja_scans_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por combinación de etiquetas")

	n, err = testutil.GatherAndCount(m.Registry(), "tpv_backend_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_InstanciasIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = metrics.New()
		_ = metrics.New()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.SaleObserved("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `tpv_caja_sales_total{result="ok"} 1`)
}
