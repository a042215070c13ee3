package router

import (
	"net/http"

	_ "github.com/evyataryagoni/voterlocation/docs" // Swagger docs
	"github.com/evyataryagoni/voterlocation/internal/handler"
	"github.com/evyataryagoni/voterlocation/internal/limiter"
	"github.com/evyataryagoni/voterlocation/internal/logger"
	"github.com/evyataryagoni/voterlocation/internal/metrics"
	custommiddleware "github.com/evyataryagoni/voterlocation/internal/middleware"
	v1 "github.com/evyataryagoni/voterlocation/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Dependencies are the collaborators the router wires together
type Dependencies struct {
	LocationHandler *handler.VoterLocationHandler
	RateLimiter     limiter.Limiter
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer // source for /metrics, defaults to the global registry
	Logger          *logger.Logger
}

// SetupRouter creates the chi router with all middleware and routes.
//
// chi's RealIP middleware is deliberately absent: it rewrites RemoteAddr from
// proxy headers, and the voter location endpoint applies its own precedence
// between X-Forwarded-For and the peer address.
func SetupRouter(deps Dependencies) chi.Router {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Order matters: request ID first so every later log line carries it
	r.Use(middleware.RequestID)
	r.Use(custommiddleware.LoggingMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(deps.Metrics))

	// API routes are rate limited, operational routes are not
	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(deps.RateLimiter, deps.Metrics))
		r.Mount("/apis/v1", v1.SetupRoutes(deps.LocationHandler))
	})

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Swagger UI: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// healthCheckHandler reports that the process is serving requests
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
