package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/catalog/rebrickable"
	"setmatch-service/internal/catalog/sqlstore"
	"setmatch-service/internal/config"
	"setmatch-service/internal/setmatch/service"
	serverhttp "setmatch-service/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	store, closer, err := openCatalog(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Catalog.Driver).Msg("open catalog")
	}
	defer closer.Close()

	svc := service.New(store, service.Options{
		BatchSize:      cfg.BatchSize,
		ThemeThreshold: cfg.ThemeMatchThreshold,
		Debug:          cfg.DebugEvents,
	}, logger)

	r := serverhttp.NewRouter(cfg, logger, svc)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Str("catalog", cfg.Catalog.Driver).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openCatalog builds the configured store wrapped with metrics and, for the
// SQL drivers, a circuit breaker.
func openCatalog(cfg config.Config, logger zerolog.Logger) (catalog.Store, io.Closer, error) {
	var (
		store  catalog.Store
		closer io.Closer = nopCloser{}
	)
	switch cfg.Catalog.Driver {
	case "memory":
		mem, _, err := rebrickable.LoadDir(cfg.Catalog.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		store = mem
	default:
		db, err := sqlstore.Open(sqlstore.Options{
			Driver:       cfg.Catalog.Driver,
			DSN:          cfg.Catalog.DSN,
			AutoMigrate:  cfg.Catalog.AutoMigrate,
			MaxOpenConns: cfg.Catalog.MaxOpenConns,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db
	}

	store = catalog.Instrument(store)
	if cfg.BreakerEnabled && cfg.Catalog.Driver != "memory" {
		store = catalog.NewBreaker(store, catalog.BreakerSettings{}, logger)
	}
	return store, closer, nil
}
