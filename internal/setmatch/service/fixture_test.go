package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/catalog/memory"
	"setmatch-service/internal/setmatch/model"
)

func intp(v int) *int { return &v }

// testCatalog:
//
//	inv 1  75301-1  Episode IV  3001/0 x4, 3002/0 x2
//	inv 2  42100-1  Technic     3001/15 x3, 3001/0 x1
//	inv 3  60000-1  Technic     3003/0 x2, spare 3001/0
func testCatalog() *memory.Store {
	b := memory.NewBuilder()
	b.AddTheme(model.Theme{ID: 1, Name: "Star Wars"})
	b.AddTheme(model.Theme{ID: 2, Name: "Episode IV", ParentID: intp(1)})
	b.AddTheme(model.Theme{ID: 3, Name: "Technic"})
	b.AddColor(0, "Black", "05131D")
	b.AddColor(15, "White", "FFFFFF")
	b.AddPart("3001", "Brick 2 x 4")
	b.AddPart("3002", "Brick 2 x 3")
	b.AddPart("3003", "Brick 2 x 2")

	b.AddSet(model.Set{SetNum: "75301-1", Name: "X-Wing", Year: 2021, ThemeID: 2})
	b.AddInventory(1, 1, "75301-1")
	b.AddInventoryPart(1, "3001", 0, 4, false)
	b.AddInventoryPart(1, "3002", 0, 2, false)

	b.AddSet(model.Set{SetNum: "42100-1", Name: "Excavator", Year: 2019, ThemeID: 3})
	b.AddInventory(2, 1, "42100-1")
	b.AddInventoryPart(2, "3001", 15, 3, false)
	b.AddInventoryPart(2, "3001", 0, 1, false)

	b.AddSet(model.Set{SetNum: "60000-1", Name: "Gearbox", Year: 2020, ThemeID: 3})
	b.AddInventory(3, 1, "60000-1")
	b.AddInventoryPart(3, "3003", 0, 2, false)
	b.AddInventoryPart(3, "3001", 0, 1, true)
	return b.Build()
}

func newTestService(store catalog.Store, batchSize int) *Service {
	return New(store, Options{BatchSize: batchSize}, zerolog.Nop())
}

var errBoom = errors.New("boom")

// flakyStore fails Inventories on the listed call numbers (1-based) and
// Candidates when candErr is set.
type flakyStore struct {
	catalog.Store
	candErr error
	failOn  map[int]bool

	mu    sync.Mutex
	calls int
}

func (f *flakyStore) Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error) {
	if f.candErr != nil {
		return nil, f.candErr
	}
	return f.Store.Candidates(ctx, keys, themeIDs)
}

func (f *flakyStore) Inventories(ctx context.Context, ids []int64) ([]model.Inventory, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failOn[f.calls]
	f.mu.Unlock()
	if fail {
		return nil, errBoom
	}
	return f.Store.Inventories(ctx, ids)
}

func userInv(parts ...model.PartRecord) model.UserInventory { return model.UserInventory(parts) }

func part(num string, color, qty int) model.PartRecord {
	return model.PartRecord{PartNum: num, ColorID: color, Quantity: qty}
}
