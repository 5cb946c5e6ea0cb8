package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"planner.onebusaway.org/gtfsdb"
	"planner.onebusaway.org/internal/app"
	"planner.onebusaway.org/internal/appconf"
	"planner.onebusaway.org/internal/logging"
	"planner.onebusaway.org/internal/restapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (err error) {
	profiles := appconf.DefaultProfiles()
	if cfg.ProfilesPath != "" {
		if profiles, err = appconf.LoadProfiles(cfg.ProfilesPath); err != nil {
			return err
		}
	}

	dbConfig := gtfsdb.NewConfig(cfg.GTFSDataPath, cfg.Env, cfg.Env == appconf.Development)
	dbConfig.Logger = logger
	store, err := gtfsdb.NewClient(dbConfig)
	if err != nil {
		return err
	}
	defer logging.HandleDeferredError(&err, store.Close, logger, "gtfsdb_close")

	if err := importStatic(ctx, store, cfg.GtfsURL); err != nil {
		return fmt.Errorf("importing %s: %w", cfg.GtfsURL, err)
	}
	logging.LogOperation(logger, "gtfs_static_ready",
		slog.String("source", cfg.GtfsURL),
		slog.Duration("duration", store.ImportRuntime()))

	application, err := app.New(cfg, profiles, store, logger)
	if err != nil {
		return err
	}
	go application.Importance.Run(ctx, cfg.ImportanceInterval)

	api := restapi.NewRestAPI(application)
	defer api.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()),
			slog.Bool("routing", cfg.GeometryURL != ""))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.LogOperation(logger, "shutting_down_server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// importStatic loads the feed from a URL or a local file. An unchanged feed
// is skipped by the store.
func importStatic(ctx context.Context, store *gtfsdb.Client, source string) error {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return store.DownloadAndStore(ctx, source)
	}
	return store.ImportFromFile(ctx, source)
}
