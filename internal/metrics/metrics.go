// Package metrics exposes Prometheus collectors for registry loads and queries.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/pension/internal/core"
)

// Query operation labels.
const (
	OpFind    = "find"
	OpCompare = "compare"
	OpCompany = "company"
	OpData    = "data"
	OpExport  = "export"
)

// Query result labels.
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics owns a private Prometheus registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	rows          prometheus.Gauge
	rawRows       prometheus.Gauge
	loadSeconds   prometheus.Gauge
	loadTimestamp prometheus.Gauge
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// New creates and registers all collectors, including Go runtime and process metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pension_registry_rows",
			Help: "Active employer rows in the working table.",
		}),
		rawRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pension_registry_raw_rows",
			Help: "Data rows read from the source file before filtering.",
		}),
		loadSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pension_registry_load_seconds",
			Help: "Duration of the last dataset load.",
		}),
		loadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pension_registry_loaded_timestamp_seconds",
			Help: "Unix time the registry was loaded.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_queries_total",
			Help: "Registry queries by operation and result.",
		}, []string{"op", "result"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pension_query_duration_seconds",
			Help:    "Registry query latency.",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rows, m.rawRows, m.loadSeconds, m.loadTimestamp,
		m.queries, m.queryDuration,
	)
	return m
}

// ObserveLoad records the outcome of a completed load.
func (m *Metrics) ObserveLoad(stats core.LoadStats) {
	m.rows.Set(float64(stats.Rows))
	m.rawRows.Set(float64(stats.RawRows))
	m.loadSeconds.Set(stats.Duration.Seconds())
	m.loadTimestamp.Set(float64(stats.LoadedAt.Unix()))
}

// ObserveQuery records one query. results is the number of rows returned;
// it only matters when err is nil.
func (m *Metrics) ObserveQuery(op string, started time.Time, results int, err error) {
	m.queryDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	m.queries.WithLabelValues(op, resultLabel(results, err)).Inc()
}

func resultLabel(results int, err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return ResultNotFound
	case err != nil:
		return ResultError
	case results == 0:
		return ResultEmpty
	default:
		return ResultOK
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
