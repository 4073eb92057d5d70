// Package metrics contadores Prometheus del terminal: llamadas al backend,
// escaneos y cobros. Usa un registro propio para que varias instancias (tests)
// no choquen en el registro global.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tpv"

// Metrics colección de métricas del terminal.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	scans    *prometheus.CounterVec
	sales    *prometheus.CounterVec
}

// New registra las métricas en un registro nuevo junto con las del proceso y el runtime.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Peticiones al backend por endpoint y resultado.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones al backend.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "caja",
			Name:      "scans_total",
			Help:      "Escaneos por origen y resultado.",
		}, []string{"source", "result"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "caja",
			Name:      "sales_total",
			Help:      "Cobros por resultado.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.scans, m.sales,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest implementa tpvapi.RequestObserver.
func (m *Metrics) ObserveRequest(endpoint, outcome string, seconds float64) {
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.latency.WithLabelValues(endpoint).Observe(seconds)
}

// ScanObserved implementa ports.PosMetrics.
func (m *Metrics) ScanObserved(source, result string) {
	m.scans.WithLabelValues(source, result).Inc()
}

// SaleObserved implementa ports.PosMetrics.
func (m *Metrics) SaleObserved(result string) {
	m.sales.WithLabelValues(result).Inc()
}

// Registry registro subyacente (tests y exportadores).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
