package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "ticker-cache-service/docs"
	"ticker-cache-service/internal/infrastructure/config"
	"ticker-cache-service/internal/infrastructure/metrics"
	"ticker-cache-service/internal/infrastructure/ratelimit"
	"ticker-cache-service/internal/infrastructure/web/handlers"
	"ticker-cache-service/internal/infrastructure/web/middleware"
)

// Routes groups the handlers mounted by NewRouter
type Routes struct {
	Assets *handlers.AssetHandler
	Health *handlers.HealthHandler
	// Stream is optional; nil disables /api/v1/stream
	Stream    http.Handler
	Auth      config.AuthConfig
	RateLimit config.RateLimitConfig
}

// NewRouter wires every endpoint and the middleware chain
func NewRouter(routes Routes) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", routes.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", routes.Health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/assets", routes.Assets.GetAssets).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/assets/{id}", routes.Assets.GetAsset).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/refresh", routes.Assets.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/status", routes.Assets.Status).Methods(http.MethodGet)
	if routes.Stream != nil {
		r.Handle("/api/v1/stream", routes.Stream).Methods(http.MethodGet)
	}

	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	var h http.Handler = r
	h = middleware.NewAuthMiddleware(routes.Auth).Handler(h)
	h = ratelimit.NewRateLimitMiddleware(routes.RateLimit).Handler(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.RequestTracingMiddleware(h)
	h = metrics.HTTPMetricsMiddleware(h)
	return h
}
