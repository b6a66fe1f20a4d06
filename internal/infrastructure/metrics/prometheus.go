// Package metrics expone contadores e histogramas Prometheus del libro de movimientos.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

var _ inventory.MetricsRecorder = (*LedgerMetrics)(nil)

// LedgerMetrics implementa inventory.MetricsRecorder sobre un registro propio.
type LedgerMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewLedgerMetrics crea el registro con las métricas del libro y las del runtime de Go.
func NewLedgerMetrics(namespace string) *LedgerMetrics {
	reg := prometheus.NewRegistry()
	m := &LedgerMetrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Operaciones sobre movimientos por tipo, clasificación y resultado.",
		}, []string{"operation", "classification", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duración de cada operación incluida la transacción.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(
		m.operations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMovement registra una operación terminada.
func (m *LedgerMetrics) ObserveMovement(operation string, classification domaininv.Classification, outcome string, elapsed time.Duration) {
	cls := string(classification)
	if !classification.Valid() {
		cls = "unknown"
	}
	m.operations.WithLabelValues(operation, cls, outcome).Inc()
	m.duration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// Registry devuelve el registro (tests y colectores adicionales).
func (m *LedgerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler sirve el formato de exposición de Prometheus.
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
