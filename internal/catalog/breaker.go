package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"setmatch-service/internal/metrics"
	"setmatch-service/internal/setmatch/model"
)

// BreakerSettings configures NewBreaker. Zero values take the defaults below.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // half-open probes, default 3
	Interval     time.Duration // closed-state count reset, default 1m
	Timeout      time.Duration // open -> half-open, default 30s
	MinRequests  uint32        // before the ratio is considered, default 10
	FailureRatio float64       // default 0.6
}

// Breaker wraps a Store with a circuit breaker. While open every call fails
// fast with ErrUnavailable. Not-found and caller cancellation are not failures.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreaker(next Store, s BreakerSettings, logger zerolog.Logger) *Breaker {
	if s.Name == "" {
		s.Name = "catalog"
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error) {
	return execute(b, func() ([]model.CandidateSet, error) { return b.next.Candidates(ctx, keys, themeIDs) })
}

func (b *Breaker) Inventories(ctx context.Context, ids []int64) ([]model.Inventory, error) {
	return execute(b, func() ([]model.Inventory, error) { return b.next.Inventories(ctx, ids) })
}

func (b *Breaker) SetInventory(ctx context.Context, setNum string) (model.SetInventory, error) {
	return execute(b, func() (model.SetInventory, error) { return b.next.SetInventory(ctx, setNum) })
}

func (b *Breaker) Themes(ctx context.Context) ([]model.Theme, error) {
	return execute(b, func() ([]model.Theme, error) { return b.next.Themes(ctx) })
}

func (b *Breaker) CountSets(ctx context.Context, themeIDs []int) (int, error) {
	return execute(b, func() (int, error) { return b.next.CountSets(ctx, themeIDs) })
}
