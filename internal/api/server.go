// Package api provides the JSON API with generated OpenAPI docs.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
)

// Server represents the Fuego API server.
type Server struct {
	fuego   *fuego.Server
	deps    *Dependencies
	version string
}

// Dependencies contains all service dependencies.
type Dependencies struct {
	Source   DataSource
	Sessions SessionStore
	// History is optional; its routes are registered only when set
	History FetchHistory
	// Broker is optional; health reports its connection when set
	Broker Broker
}

// Config holds API server configuration.
type Config struct {
	Title       string
	Description string
	Version     string
}

// NewServer creates a new Fuego API server. Its routes are served through
// Handler on the web server; it does not listen on its own.
func NewServer(cfg *Config, deps *Dependencies) *Server {
	s := fuego.NewServer(
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				DisableSwaggerUI: true,
				DisableLocalSave: true,
				PrettyFormatJSON: true,
			}),
		),
	)

	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	// access logs come from the web router
	fuego.Use(s, middleware.RequestID)
	fuego.Use(s, middleware.Recoverer)

	srv := &Server{
		fuego:   s,
		deps:    deps,
		version: cfg.Version,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) registerRoutes() {
	v1 := fuego.Group(s.fuego, "/api/v1")

	fuego.Get(v1, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API"),
		option.Tags("System"),
	)

	fuego.Get(v1, "/tables/{view}/{stats}", s.getTable,
		option.Summary("Get Stats Table"),
		option.Description("Fetches a stats selection and returns it as headers and rows derived from the first record. The leaders view returns one section per category."),
		option.Tags("Tables"),
		option.Path("view", "View type: team, individual or leaders"),
		option.Path("stats", "Stats type: batting, pitching or fielding"),
		option.Query("freshness", "Set to true to include the last update time of the stats data"),
	)

	fuego.Get(v1, "/teams", s.listTeams,
		option.Summary("List Teams"),
		option.Description("Returns the teams of both leagues"),
		option.Tags("Teams"),
	)

	fuego.Get(v1, "/teams/{league}", s.listLeagueTeams,
		option.Tags("Teams"),
		option.Summary("List League Teams"),
		option.Description("Returns the teams of one league"),
		option.Path("league", "League: central or pacific"),
	)

	fuego.Get(v1, "/statistics", s.getStatistics,
		option.Summary("Get Statistics"),
		option.Description("Returns the player and team counts with the last update time"),
		option.Tags("Statistics"),
	)

	fuego.Get(v1, "/sessions/{id}", s.getSession,
		option.Summary("Get Session"),
		option.Description("Returns the state of every view of a dashboard session"),
		option.Tags("Sessions"),
		option.Path("id", "Session id from the dashboard cookie"),
	)

	if s.deps.History == nil {
		return
	}

	fuego.Get(v1, "/fetches", s.listFetches,
		option.Summary("List Fetches"),
		option.Description("Returns resolved view fetches, newest first"),
		option.Tags("History"),
		option.Query("view", "Only fetches of this view"),
		option.Query("session", "Only fetches of this session"),
		option.Query("failed", "Set to true to return failed fetches only"),
		option.Query("limit", "Maximum number of fetches (1-100)"),
	)

	fuego.Get(v1, "/fetches/stats", s.getFetchStats,
		option.Summary("Fetch Statistics"),
		option.Description("Returns fetch counts, failures and durations per view"),
		option.Tags("History"),
	)
}

// Handler serves the API routes.
func (s *Server) Handler() http.Handler {
	return s.fuego.Mux
}

// MountDocsOn mounts the OpenAPI documentation routes (/docs, /openapi.json)
// on a Chi router.
func (s *Server) MountDocsOn(r interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}, title, description string) {
	scalarHandler := ScalarHandler("/openapi.json", title, description)
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		scalarHandler.ServeHTTP(w, req)
	})

	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		spec := s.fuego.OpenAPI.Description()
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	})
}
