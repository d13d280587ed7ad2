package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockedby/npb-dashboard/internal/api"
	"github.com/blockedby/npb-dashboard/internal/cache"
	"github.com/blockedby/npb-dashboard/internal/config"
	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/database"
	"github.com/blockedby/npb-dashboard/internal/export"
	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/nats"
	"github.com/blockedby/npb-dashboard/internal/npbapi"
	"github.com/blockedby/npb-dashboard/internal/publisher"
	"github.com/blockedby/npb-dashboard/internal/repository"
	"github.com/blockedby/npb-dashboard/internal/web"
	"github.com/blockedby/npb-dashboard/internal/web/assets"
	"github.com/blockedby/npb-dashboard/internal/web/handlers"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("version", version).Msg("starting npb dashboard")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. NPB API client
	client := npbapi.New(cfg.APIBaseURL,
		npbapi.WithTimeout(cfg.APITimeout()),
		npbapi.WithRateLimiter(npbapi.NewRateLimiter(cfg.APIRPS, cfg.APIBurst)),
		npbapi.WithLogger(log.Component("npbapi")),
	)

	// 5. WebSocket hub
	hub := web.NewHub()
	go hub.Run()

	opts := []dashboard.Option{
		dashboard.WithTTL(cfg.SessionTTL()),
		dashboard.WithChangeHook(web.NotifySession(hub)),
	}

	// 6. Connect to NATS (optional)
	var broker *nats.Client
	if cfg.NatsURL != "" {
		nc, err := nats.New(ctx, cfg.NatsURL,
			nats.WithLogger(log.Component("nats")),
			nats.WithRetention(cfg.HistoryRetention()),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			broker = nc
			opts = append(opts, dashboard.WithPublisher(publisher.NewNATSPublisher(nc)))
		}
	}

	// 7. Fetch history (optional)
	var history *repository.FetchesRepository
	if cfg.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open history database")
		}
		defer db.Close()

		history, err = repository.NewFetchesRepository(db.GORM)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare fetch history")
		}
		opts = append(opts, dashboard.WithPublisher(history))
		go history.RunPruner(ctx, cfg.HistoryRetention(), time.Hour)
		log.Info().Str("driver", db.Driver()).Msg("fetch history enabled")
	}

	// 8. API response cache (optional). Dashboard sessions always fetch live.
	var apiSource api.DataSource = client
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to redis, api cache disabled")
		} else {
			defer rdb.Close()
			apiSource = cache.NewSource(client, cache.NewRedisStore(rdb), cfg.CacheTTL())
			log.Info().Dur("ttl", cfg.CacheTTL()).Msg("api cache enabled")
		}
	}

	// 9. Session manager
	manager := dashboard.NewManager(client, opts...)
	go manager.Run(ctx)

	// 10. Templates: embedded, or reloaded from disk when TEMPLATES_DIR is set
	var tmpl *web.TemplateEngine
	if cfg.TemplatesDir != "" {
		tmpl = web.NewTemplateEngine(cfg.TemplatesDir, true)
		log.Info().Str("dir", cfg.TemplatesDir).Msg("loading templates from disk")
	} else {
		tmpl = web.NewTemplateEngineFS(assets.Templates(), false)
	}
	if err := tmpl.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	// 11. Initialize Web Handlers
	pagesHandler := handlers.NewPagesHandler(tmpl)
	partialsHandler := handlers.NewPartialsHandler(tmpl, client)
	actionsHandler := handlers.NewActionsHandler(tmpl)
	exportHandler := handlers.NewExportHandler(tmpl, export.NewPDFRenderer(cfg.ChromePath))

	// 12. Initialize Server
	webCfg := &web.Config{
		Port:               cfg.HTTPPort,
		Static:             assets.Static(),
		Session:            handlers.SessionMiddleware(manager, cfg.SessionTTL()),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Version:            version,
	}
	server := web.NewServer(webCfg, hub)

	// 13. Register all handlers
	server.RegisterPagesHandler(pagesHandler)
	server.RegisterPartialsHandler(partialsHandler)
	server.RegisterActionsHandler(actionsHandler)
	server.RegisterExportHandler(exportHandler)

	// 14. JSON API
	apiServer := api.NewServer(&api.Config{
		Title:       "NPB Dashboard API",
		Description: "Derived stats tables, team directory and dashboard sessions",
		Version:     version,
	}, apiDeps(apiSource, manager, history, broker))
	server.MountAPI(apiServer.Handler())
	apiServer.MountDocsOn(server.Router(), "NPB Dashboard API", "JSON API of the NPB data dashboard")

	// 15. Start Server
	log.Info().Int("port", cfg.HTTPPort).Str("api", cfg.APIBaseURL).Msg("starting web server")
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// 16. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	manager.CloseAll()

	log.Info().Msg("shutdown complete")
}

// apiDeps leaves History and Broker nil when they are disabled
func apiDeps(source api.DataSource, manager *dashboard.Manager, history *repository.FetchesRepository, broker *nats.Client) *api.Dependencies {
	deps := &api.Dependencies{Source: source, Sessions: manager}
	if history != nil {
		deps.History = history
	}
	if broker != nil {
		deps.Broker = broker
	}
	return deps
}
