// Package api exposes the catalog over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/pkg/catalog"
	"gitlab.connectwisedev.com/catalog-service/pkg/metrics"
)

// Version is reported by the index route.
const Version = "1.0.0"

// Router wires the catalog handlers into a chi mux.
type Router struct {
	service     *catalog.Service
	metrics     *metrics.Collector
	logger      *zap.Logger
	serviceName string
}

// NewRouter creates a new router instance
func NewRouter(service *catalog.Service, m *metrics.Collector, logger *zap.Logger, serviceName string) *Router {
	return &Router{
		service:     service,
		metrics:     m,
		logger:      logger,
		serviceName: serviceName,
	}
}

// Setup configures all routes and middleware. The product routes are served at
// the root and again under /api/v1.
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(chimiddleware.RealIP)
	router.Use(accessLog(rt.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(instrument(rt.metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/", rt.index)
	router.Get("/health", rt.health)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	router.Group(rt.productRoutes)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.health)
		rt.productRoutes(r)
	})

	return router
}

func (rt *Router) productRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", rt.listProducts)
		r.Post("/", rt.createProduct)
		r.Get("/category/{category}", rt.listByCategory)
		r.Get("/{id}", rt.getProduct)
		r.Patch("/{id}/stock", rt.adjustStock)
	})
	r.Get("/stats", rt.stats)
}
