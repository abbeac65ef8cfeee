// Package metrics defines the Prometheus collectors of the budget service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "budget"

// Metrics holds the service's collectors.
type Metrics struct {
	RequestCounter      *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	TransactionsCreated prometheus.Counter
	ImportedRows        prometheus.Counter
	RejectedRows        *prometheus.CounterVec
	FailedImports       prometheus.Counter
	ActiveSessions      prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		TransactionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_created_total",
			Help:      "Transactions appended through manual entry",
		}),
		ImportedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_accepted_total",
			Help:      "Imported rows appended to a ledger",
		}),
		RejectedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "rows_rejected_total",
				Help:      "Imported rows refused by validation",
			},
			[]string{"kind"},
		),
		FailedImports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "files_failed_total",
			Help:      "Uploaded files that could not be read",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions holding a ledger",
		}),
	}
}

// Middleware records request counts and durations, labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}
