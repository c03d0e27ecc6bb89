package routes

import (
	"net/http"

	"github.com/zatekoja/rarediseaseguide/internal/api/handlers"
	"github.com/zatekoja/rarediseaseguide/internal/api/middleware"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	diseaseHandler *handlers.DiseaseHandler
	healthHandler  *handlers.HealthHandler

	rateLimiter *middleware.IPRateLimiter
	cors        middleware.CORSConfig
	metrics     *observability.Metrics
}

// NewRouter creates a new router; rateLimiter may be nil to disable limiting
func NewRouter(
	diseaseHandler *handlers.DiseaseHandler,
	healthHandler *handlers.HealthHandler,
	rateLimiter *middleware.IPRateLimiter,
	cors middleware.CORSConfig,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		diseaseHandler: diseaseHandler,
		healthHandler:  healthHandler,
		rateLimiter:    rateLimiter,
		cors:           cors,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Disease lookup endpoints
	r.mux.Handle("GET /api/orpha/{term}", r.limited(r.diseaseHandler.SearchDisease))
	r.mux.Handle("GET /api/orpha/codes/{code}", r.limited(r.diseaseHandler.GetDiseaseByCode))
	r.mux.Handle("POST /api/diseases/extract", r.limited(r.diseaseHandler.ExtractDisease))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.cors)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

func (r *Router) limited(h http.HandlerFunc) http.Handler {
	if r.rateLimiter == nil {
		return h
	}
	return r.rateLimiter.Middleware(h)
}
