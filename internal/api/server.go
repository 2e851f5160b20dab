// Package api provides the HTTP API server and handlers for the StoryBook application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/prefs"
	"github.com/storybookapp/storybook-server/internal/service"
	"github.com/storybookapp/storybook-server/internal/store"
	"github.com/storybookapp/storybook-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	storyService *service.StoryService
	prefs        *prefs.Store
	validator    *validation.Validator
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, storyService *service.StoryService, prefStore *prefs.Store, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:        st,
		storyService: storyService,
		prefs:        prefStore,
		validator:    validation.New(),
		router:       router,
		logger:       logger,
	}

	// chi requires all middleware to be registered before any routes, and
	// humachi.New registers the docs/openapi routes immediately, so the huma
	// API must be created after the middleware stack is set up.
	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("StoryBook API", "1.0.0")
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerStoryRoutes()
	s.registerSessionRoutes()
	s.registerPromptRoutes()
	s.registerPreferenceRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. The API is consumed by a
// browser frontend served from a different origin during development, so
// CORS is part of the baseline.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}
