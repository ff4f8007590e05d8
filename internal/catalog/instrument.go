package catalog

import (
	"context"
	"errors"
	"time"

	"setmatch-service/internal/metrics"
	"setmatch-service/internal/setmatch/model"
)

// Instrumented records latency and errors of every call on the wrapped Store.
type Instrumented struct {
	next Store
}

func Instrument(next Store) *Instrumented { return &Instrumented{next: next} }

func (s *Instrumented) Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error) {
	start := time.Now()
	out, err := s.next.Candidates(ctx, keys, themeIDs)
	metrics.ObserveStore("candidates", time.Since(start), err)
	return out, err
}

func (s *Instrumented) Inventories(ctx context.Context, ids []int64) ([]model.Inventory, error) {
	start := time.Now()
	out, err := s.next.Inventories(ctx, ids)
	metrics.ObserveStore("inventories", time.Since(start), err)
	return out, err
}

func (s *Instrumented) SetInventory(ctx context.Context, setNum string) (model.SetInventory, error) {
	start := time.Now()
	out, err := s.next.SetInventory(ctx, setNum)
	metrics.ObserveStore("set_inventory", time.Since(start), ignoreNotFound(err))
	return out, err
}

func (s *Instrumented) Themes(ctx context.Context) ([]model.Theme, error) {
	start := time.Now()
	out, err := s.next.Themes(ctx)
	metrics.ObserveStore("themes", time.Since(start), err)
	return out, err
}

func (s *Instrumented) CountSets(ctx context.Context, themeIDs []int) (int, error) {
	start := time.Now()
	out, err := s.next.CountSets(ctx, themeIDs)
	metrics.ObserveStore("count_sets", time.Since(start), err)
	return out, err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
