package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/gearforge/internal/logger"
	"github.com/meur/gearforge/internal/storage"
)

// Options configures the HTTP server
type Options struct {
	AllowedOrigins []string
	Logger         logger.Logger
}

// Server holds the HTTP server dependencies
type Server struct {
	store  *storage.Store
	log    logger.Logger
	router chi.Router
}

// New creates a new API server
func New(store *storage.Store, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		store:  store,
		log:    log,
		router: chi.NewRouter(),
	}

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/games", s.handleGetGames)
		r.Get("/games/{gameID}", s.handleGetGame)
		r.Get("/games/{gameID}/items", s.handleGetItems)
		r.Get("/games/{gameID}/sheets", s.handleGetSheets)
		r.Get("/games/{gameID}/lookup", s.handleLookup)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(); err != nil {
			s.log.Error("Health check failed", logger.Error(err))
			respondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
