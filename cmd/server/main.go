/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the people reports server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config from PEOPLE_REPORTS_* env vars (and .env)
  2. Apply command-line flag overrides
  3. Open the storage backend
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (env PEOPLE_REPORTS_SERVER__PORT, default 8080)
  -driver    sqlite, postgres or memory (default sqlite)
  -db        SQLite database path (default ./people.db)
             Use ":memory:" for in-memory database
  -db-url    PostgreSQL connection URL
  -scenario  Load a demo scenario on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/people.db"

  # Run in memory with demo data
  ./server -driver=memory -scenario=org-chart

  # Run against PostgreSQL
  ./server -driver=postgres -db-url="postgres://localhost/people"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Environment variables
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/warp/people-reports/api"
	"github.com/warp/people-reports/config"
	"github.com/warp/people-reports/dataset"
	"github.com/warp/people-reports/logging"
	"github.com/warp/people-reports/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	scenario, err := applyFlags(flag.CommandLine, os.Args[1:], cfg)
	if err != nil {
		os.Exit(2)
	}

	log := logging.New(cfg.Logging)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize store
	ctx := context.Background()
	backend, err := store.Open(ctx, cfg, log, reg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database")
	}
	defer backend.Close()

	if scenario != "" {
		if err := loadScenario(ctx, backend, scenario); err != nil {
			log.Fatal().Err(err).Str("scenario", scenario).Msg("Failed to load scenario")
		}
		log.Info().Str("scenario", scenario).Msg("Scenario loaded")
	}

	// Initialize handler and router
	handler := api.NewHandler(backend.Directory, backend.Reports, log)
	router := api.NewRouter(handler, api.RouterConfig{
		Logger:         log,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Gatherer:       reg,
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("driver", backend.Driver).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// applyFlags parses args into fs, overriding cfg with any flag given. It
// returns the startup scenario name, empty when none was asked for.
func applyFlags(fs *flag.FlagSet, args []string, cfg *config.Config) (string, error) {
	port := fs.Int("port", cfg.Server.Port, "HTTP server port")
	driver := fs.String("driver", cfg.Database.Driver, "Storage backend: sqlite, postgres or memory")
	dbPath := fs.String("db", cfg.Database.Path, "SQLite database path")
	dbURL := fs.String("db-url", cfg.Database.URL, "PostgreSQL connection URL")
	scenario := fs.String("scenario", "", "Demo scenario to load on startup")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	cfg.Server.Port = *port
	cfg.Database.Driver = *driver
	cfg.Database.Path = *dbPath
	cfg.Database.URL = *dbURL
	return *scenario, nil
}

// loadScenario replaces the backend's data with the named demo scenario.
// A failed load is followed by another reset so no partial dataset stays.
func loadScenario(ctx context.Context, backend *store.Backend, name string) error {
	f, err := dataset.Scenario(name)
	if err != nil {
		return err
	}
	if err := backend.Directory.Reset(ctx); err != nil {
		return err
	}
	if _, err := f.Load(ctx, backend.Directory); err != nil {
		if resetErr := backend.Directory.Reset(ctx); resetErr != nil {
			return errors.Join(err, resetErr)
		}
		return err
	}
	return nil
}
