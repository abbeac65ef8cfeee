package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/auth"
	"github.com/MrJamesThe3rd/budget/internal/http/importer"
	"github.com/MrJamesThe3rd/budget/internal/http/report"
	"github.com/MrJamesThe3rd/budget/internal/http/session"
	"github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
)

type Options struct {
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Tokens      auth.Verifier
	CORSOrigins []string
	Timeout     time.Duration
}

func New(
	opts Options,
	sessionsV1 *session.Handler,
	transactionsV1 *transaction.Handler,
	importV1 *importer.Handler,
	reportV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(opts.Log))
	router.Use(middleware.Recoverer)
	router.Use(opts.Metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/sessions", sessionsV1.Routes)
		r.Get("/import/template", importV1.Template)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.Tokens, opts.Log))

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				transactionsV1.Routes(r)
			})

			r.Route("/import", importV1.Routes)

			reportV1.Routes(r)
		})
	})

	return router
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
