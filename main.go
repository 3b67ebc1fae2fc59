package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darte/storefront/internal/api"
	"github.com/darte/storefront/internal/catalog"
	"github.com/darte/storefront/internal/db"
	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/session"
	"github.com/darte/storefront/pkg/config"
	"github.com/darte/storefront/pkg/logger"
	"github.com/gorilla/mux"
)

const sessionSweepInterval = time.Minute

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger.Init(cfg.OTELServiceName, cfg.LogLevel, cfg.LogPretty)
	log := logger.Logger

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize OpenTelemetry metrics
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down meter provider")
		}
	}()

	// Load the catalog every session is seeded from
	cat, closeCatalog, err := loadCatalog(ctx, cfg, appMetrics)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.CatalogSource).Msg("failed to load catalog")
	}
	defer closeCatalog()
	log.Info().
		Str("source", cfg.CatalogSource).
		Int("products", len(cat.Products)).
		Int("users", len(cat.Users)).
		Msg("catalog loaded")

	// Sessions
	sessions := session.NewManager(cat, session.Options{
		CookieName:     cfg.SessionCookieName,
		IdleTimeout:    cfg.SessionIdleTimeout,
		StartLoggedIn:  cfg.SessionStartLoggedIn,
		AutoReplyDelay: cfg.AutoReplyDelay,
	}, appMetrics)
	defer sessions.Close()
	go sessions.Run(ctx, sessionSweepInterval)

	// Initialize app. Uploads are acknowledged only, so no catalog writer is wired.
	app := api.NewApp(cfg, appMetrics, sessions, api.NewServices(cat, nil, appMetrics))

	// Setup router
	router := mux.NewRouter()
	app.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      app.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.AppPort).
			Bool("otlp_export", cfg.MetricsExportEnabled).
			Str("otlp_endpoint", cfg.OTELExporterOTLPEndpoint).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// loadCatalog reads the catalog from the configured source. The returned
// func releases whatever the source holds open.
func loadCatalog(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics) (*catalog.Catalog, func(), error) {
	if cfg.CatalogSource != config.CatalogSourceMySQL {
		cat, err := catalog.FileSource{Path: cfg.CatalogFile}.Load(ctx)
		return cat, func() {}, err
	}

	database, err := db.Open(ctx, cfg.GetDSN(), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}

	schemaSQL, err := os.ReadFile("schema.sql")
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("could not read schema.sql, assuming the schema exists")
	} else if err := database.InitSchema(ctx, string(schemaSQL)); err != nil {
		logger.Warn(ctx).Err(err).Msg("could not initialize schema, assuming it exists")
	}

	cat, err := catalog.SQLSource{DB: database, Metrics: m}.Load(ctx)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return cat, func() { database.Close() }, nil
}
