package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"setmatch-service/internal/setmatch/model"
)

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Candidates(context.Context, []model.PartKey, []int) ([]model.CandidateSet, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) Inventories(context.Context, []int64) ([]model.Inventory, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) SetInventory(_ context.Context, setNum string) (model.SetInventory, error) {
	f.calls++
	if f.err != nil {
		return model.SetInventory{}, f.err
	}
	return model.SetInventory{Set: model.Set{SetNum: setNum}}, nil
}

func (f *flakyStore) Themes(context.Context) ([]model.Theme, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) CountSets(context.Context, []int) (int, error) {
	f.calls++
	return 7, f.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	next := &flakyStore{err: errors.New("connection refused")}
	b := NewBreaker(next, BreakerSettings{Name: "test-open", MinRequests: 3, Timeout: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Candidates(ctx, nil, nil); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: err = %v, want pass-through failure", i, err)
		}
	}
	_, err := b.Candidates(ctx, nil, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable once open", err)
	}
	if next.calls != 3 {
		t.Errorf("underlying calls = %d, want 3", next.calls)
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	next := &flakyStore{err: fmt.Errorf("set x: %w", ErrNotFound)}
	b := NewBreaker(next, BreakerSettings{Name: "test-notfound", MinRequests: 2, Timeout: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := b.SetInventory(ctx, "x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: err = %v, want ErrNotFound", i, err)
		}
	}
	if next.calls != 5 {
		t.Errorf("underlying calls = %d, want 5", next.calls)
	}
}

func TestBreakerPassesValues(t *testing.T) {
	b := NewBreaker(&flakyStore{}, BreakerSettings{Name: "test-values"}, zerolog.Nop())
	n, err := b.CountSets(context.Background(), nil)
	if err != nil || n != 7 {
		t.Errorf("CountSets = %d, %v; want 7, nil", n, err)
	}
	inv, err := b.SetInventory(context.Background(), "42100-1")
	if err != nil || inv.Set.SetNum != "42100-1" {
		t.Errorf("SetInventory = %+v, %v", inv, err)
	}
}
