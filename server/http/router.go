package serverhttp

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"setmatch-service/internal/config"
	"setmatch-service/internal/middleware"
	"setmatch-service/internal/setmatch/handler"
	"setmatch-service/internal/setmatch/service"
	"setmatch-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, svc *service.Service) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> metrics -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(func(ctx context.Context) error {
		_, err := svc.CountSets(ctx, nil)
		return err
	}))
	r.Handle("/metrics", promhttp.Handler())
	if cfg.Profiling {
		r.Mount("/debug", chimw.Profiler())
	}

	r.Get("/themes", handler.Themes(svc, logger))
	r.Get("/sets/count", handler.CountSets(svc, logger))
	r.Get("/sets/{setNum}/inventory.csv", handler.InventoryCSV(svc, logger))

	// uploads and scoring are rate limited per client IP
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/compare-sets", handler.CompareSets(svc, cfg, logger))
		r.Post("/missing-parts", handler.MissingParts(svc, cfg, logger))
		r.Post("/generate-inventory-csv", handler.GenerateInventoryCSV(svc, logger))
		r.Post("/parse", handler.ParseInventory(cfg, logger))
	})

	return r
}
