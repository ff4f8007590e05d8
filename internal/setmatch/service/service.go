// Package service runs the set comparison pipeline: candidate selection,
// batch scoring, the streaming coordinator and the missing-parts calculator.
package service

import (
	"sync"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog"
)

const (
	DefaultBatchSize      = 50
	DefaultThemeThreshold = 0.85
)

type Options struct {
	BatchSize      int
	ThemeThreshold float64 // minimum similarity for a fuzzy theme name match
	Debug          bool    // emit a debug event after metadata
}

// Service is safe for concurrent use; every comparison owns its own state.
type Service struct {
	store          catalog.Store
	logger         zerolog.Logger
	batchSize      int
	themeThreshold float64
	debug          bool

	themesMu sync.Mutex
	themes   *themeIndex
}

func New(store catalog.Store, opts Options, logger zerolog.Logger) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ThemeThreshold <= 0 || opts.ThemeThreshold > 1 {
		opts.ThemeThreshold = DefaultThemeThreshold
	}
	return &Service{
		store:          store,
		logger:         logger.With().Str("component", "setmatch").Logger(),
		batchSize:      opts.BatchSize,
		themeThreshold: opts.ThemeThreshold,
		debug:          opts.Debug,
	}
}

func (s *Service) BatchSize() int { return s.batchSize }
