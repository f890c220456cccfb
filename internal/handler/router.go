package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/metrics"
)

// Router wires every handler behind the shared middleware stack.
type Router struct {
	authHandler     *AuthHandler
	accountHandler  *AccountHandler
	userHandler     *UserHandler
	categoryHandler *CategoryHandler
	productHandler  *ProductHandler
	cartHandler     *CartHandler
	healthHandler   *HealthHandler
	resolver        auth.PrincipalResolver
	metrics         *metrics.Metrics
	metricsPath     string
	maxBodySize     int64
	logger          zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler     *AuthHandler
	AccountHandler  *AccountHandler
	UserHandler     *UserHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	HealthHandler   *HealthHandler

	// Resolver authenticates bearer tokens.
	Resolver auth.PrincipalResolver

	// Metrics is optional. When set, its handler is served at MetricsPath.
	Metrics     *metrics.Metrics
	MetricsPath string

	// MaxBodySize caps request bodies. Zero means 1 MiB.
	MaxBodySize int64

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		authHandler:     config.AuthHandler,
		accountHandler:  config.AccountHandler,
		userHandler:     config.UserHandler,
		categoryHandler: config.CategoryHandler,
		productHandler:  config.ProductHandler,
		cartHandler:     config.CartHandler,
		healthHandler:   config.HealthHandler,
		resolver:        config.Resolver,
		metrics:         config.Metrics,
		metricsPath:     config.MetricsPath,
		maxBodySize:     config.MaxBodySize,
		logger:          config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(rt.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(limitBody(rt.maxBodySize))
	r.Use(observeRequests(rt.metrics))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Not found", Code: CodeNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Message: "Method not allowed", Code: "method_not_allowed"})
	})

	// Probes and metrics (no auth)
	r.Get("/health", rt.healthHandler.handleHealth)
	r.Get("/ready", rt.healthHandler.handleReady)
	if rt.metrics != nil && rt.metricsPath != "" {
		r.Method(http.MethodGet, rt.metricsPath, rt.metrics.Handler())
	}

	// Public routes
	rt.authHandler.RegisterRoutes(r)
	rt.categoryHandler.RegisterPublicRoutes(r)
	rt.productHandler.RegisterPublicRoutes(r)

	authConfig := auth.Config{
		OnFailure: rt.metrics.AuthFailure,
		Logger:    rt.logger,
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(rt.resolver, authConfig))

		rt.accountHandler.RegisterRoutes(r)
		rt.cartHandler.RegisterRoutes(r)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(authConfig))

			rt.userHandler.RegisterRoutes(r)
			rt.categoryHandler.RegisterAdminRoutes(r)
			rt.productHandler.RegisterAdminRoutes(r)
		})
	})

	return r
}
