package web

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds server configuration
type Config struct {
	Port int
	// Static is served under /static/; nil disables it
	Static fs.FS
	// Session attaches the dashboard session to page, partial and action
	// requests; nil leaves them without a session
	Session func(http.Handler) http.Handler
	// CORSAllowedOrigins applies to the JSON API only
	CORSAllowedOrigins []string
	Version            string
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	hub        *Hub

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new HTTP server. hub may be nil.
func NewServer(cfg *Config, hub *Hub) *Server {
	router := chi.NewRouter()

	srv := &Server{
		router: router,
		config: cfg,
		hub:    hub,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	if s.config.Static != nil {
		fileServer := http.FileServer(http.FS(s.config.Static))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	// WebSocket
	if s.hub != nil {
		s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.hub, w, r)
		})
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprintf(w, `{"status":"ok","version":%q}`, version); err != nil {
			_ = err // Client disconnected
		}
	})
}

// sessioned returns a router that runs the session middleware
func (s *Server) sessioned() chi.Router {
	if s.config.Session == nil {
		return s.router.With()
	}
	return s.router.With(s.config.Session)
}

// Start starts the HTTP server. It returns http.ErrServerClosed once Stop
// has been called, including when Stop ran first.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	return s.httpServer.Serve(listener)
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address, or nil before Start has listened.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	if addr := s.Addr(); addr != nil {
		return fmt.Sprintf("http://%s", addr.String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}

// RegisterPagesHandler registers the full page routes
func (s *Server) RegisterPagesHandler(handler interface{}) {
	type pagesHandler interface {
		Home(w http.ResponseWriter, r *http.Request)
		Teams(w http.ResponseWriter, r *http.Request)
		Summary(w http.ResponseWriter, r *http.Request)
		Stats(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(pagesHandler); ok {
		r := s.sessioned()
		r.Get("/", h.Home)
		r.Get("/teams", h.Teams)
		r.Get("/summary", h.Summary)
		r.Get("/stats", h.Stats)
	}
}

// RegisterPartialsHandler registers the HTMX fragment routes
func (s *Server) RegisterPartialsHandler(handler interface{}) {
	type partialsHandler interface {
		Summary(w http.ResponseWriter, r *http.Request)
		Teams(w http.ResponseWriter, r *http.Request)
		TeamsFreshness(w http.ResponseWriter, r *http.Request)
		Players(w http.ResponseWriter, r *http.Request)
		PlayerDetail(w http.ResponseWriter, r *http.Request)
		Stats(w http.ResponseWriter, r *http.Request)
		StatsFreshness(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(partialsHandler); ok {
		s.sessioned().Route("/partials", func(r chi.Router) {
			r.Get("/summary", h.Summary)
			r.Get("/teams", h.Teams)
			r.Get("/teams/freshness", h.TeamsFreshness)
			r.Get("/players", h.Players)
			r.Get("/players/{id}", h.PlayerDetail)
			r.Get("/stats", h.Stats)
			r.Get("/stats/freshness", h.StatsFreshness)
		})
	}
}

// RegisterActionsHandler registers the selection actions
func (s *Server) RegisterActionsHandler(handler interface{}) {
	type actionsHandler interface {
		SelectTeam(w http.ResponseWriter, r *http.Request)
		SelectStats(w http.ResponseWriter, r *http.Request)
		ReloadStats(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(actionsHandler); ok {
		r := s.sessioned()
		r.Post("/players/select", h.SelectTeam)
		r.Post("/stats/select", h.SelectStats)
		r.Post("/stats/reload", h.ReloadStats)
	}
}

// RegisterExportHandler registers the PDF export route
func (s *Server) RegisterExportHandler(handler interface{}) {
	type exportHandler interface {
		StatsPDF(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(exportHandler); ok {
		s.sessioned().Get("/export/stats.pdf", h.StatsPDF)
	}
}

// MountAPI serves the JSON API under /api with CORS enabled
func (s *Server) MountAPI(api http.Handler) {
	origins := s.config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.With(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	})).Mount("/api", api)
}

// Router returns the underlying Chi router for external route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}
