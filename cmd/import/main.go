// Command import loads the Rebrickable CSV dumps into a SQL catalog.
//
//	import -dir ./data -driver postgres -dsn "postgres://..."
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog/rebrickable"
	"setmatch-service/internal/catalog/sqlstore"
)

func main() {
	dir := flag.String("dir", "data", "directory holding the dump files (.csv or .csv.gz)")
	driver := flag.String("driver", "postgres", "postgres or sqlite")
	dsn := flag.String("dsn", os.Getenv("CATALOG_DSN"), "database DSN")
	batch := flag.Int("batch", 1000, "rows per INSERT")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	if *dsn == "" {
		logger.Fatal().Msg("-dsn or CATALOG_DSN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlstore.Open(sqlstore.Options{Driver: *driver, DSN: *dsn, AutoMigrate: true}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	start := time.Now()
	im := store.Importer(*batch)
	stats, err := rebrickable.Load(os.DirFS(*dir), im, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("read dumps")
	}
	if err := im.Flush(ctx); err != nil {
		logger.Fatal().Err(err).Msg("write catalog")
	}
	logger.Info().
		Interface("loaded", stats.Loaded).
		Interface("skipped", stats.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("import done")
}
