package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/health"
	"github.com/MrJamesThe3rd/finsight/internal/http/insight"
	"github.com/MrJamesThe3rd/finsight/internal/http/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/http/processing"
	"github.com/MrJamesThe3rd/finsight/internal/http/task"
	"github.com/MrJamesThe3rd/finsight/internal/http/trend"
)

type Handlers struct {
	Health     *health.Handler
	Trends     *trend.Handler
	Insights   *insight.Handler
	Tasks      *task.Handler
	Ledger     *ledger.Handler
	Processing *processing.Handler
}

type Options struct {
	Auth           auth.Config
	AllowedOrigins []string
	Metrics        prometheus.Gatherer
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Auth))

		r.Route("/health-score", h.Health.Routes)
		r.Route("/trends", h.Trends.Routes)
		r.Route("/insights", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Insights.Routes(r)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Tasks.Routes(r)
		})
		r.Route("/ledger", h.Ledger.Routes)
		r.Route("/processing", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Processing.Routes(r)
		})
	})

	return router
}
