package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"keyportal/internal/api"
	"keyportal/internal/api/handlers"
	"keyportal/internal/api/middleware"
	"keyportal/internal/app"
	"keyportal/internal/engine/credentials"
	"keyportal/internal/pkg/i18n"
	"keyportal/internal/pkg/logger"
	"keyportal/internal/pkg/metrics"
	"keyportal/internal/platform/config"
	"keyportal/internal/platform/database"
	"keyportal/internal/platform/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logCloser := logger.Init(cfg.Logging)
	defer logCloser.Close()

	// Storage
	var backend storage.Backend
	var pinger handlers.Pinger
	switch cfg.Storage.Driver {
	case "memory":
		backend = storage.NewMemoryBackend()
		log.Warn().Msg("Using in-memory storage; sessions will not survive a restart")
	case "sqlite":
		db, err := database.NewDB(cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()

		if err := database.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		sqliteBackend := storage.NewSQLiteBackend(db)
		backend = sqliteBackend
		pinger = sqliteBackend
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("Unknown storage driver")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		recorder = metrics.NewCollector(reg)
	}

	locale, ok := i18n.ParseLocale(cfg.Locale.Default)
	if !ok {
		log.Warn().Str("locale", cfg.Locale.Default).Msg("Unsupported default locale, using English")
		locale = i18n.English
	}

	registry, err := app.NewRegistry(backend, app.Options{
		Issuer:          credentials.NewIssuer(cfg.Session.Issuer),
		DefaultLocale:   locale,
		SignInDelay:     cfg.Session.SignInDelay,
		RegenerateDelay: cfg.Session.RegenerateDelay,
		Logger:          log.Logger,
		Metrics:         recorder,
		MaxOrigins:      cfg.Session.MaxOrigins,
		IdleTimeout:     cfg.Session.OriginIdleTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create origin registry")
	}
	defer registry.CloseAll()

	// Router
	deps := &api.Dependencies{
		PageHandler:      handlers.NewPageHandler(),
		SessionHandler:   handlers.NewSessionHandler(),
		APIKeyHandler:    handlers.NewAPIKeyHandler(),
		LanguageHandler:  handlers.NewLanguageHandler(),
		HealthHandler:    handlers.NewHealthHandler(pinger),
		OriginMiddleware: middleware.NewOriginMiddleware(registry, cfg.Session),
		MetricsPath:      cfg.Metrics.Path,
	}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = handlers.NewMetricsHandler(reg)
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx)

	go func() {
		log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
