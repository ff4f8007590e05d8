// Package catalog defines the read-only set catalog the matcher queries and
// the decorators shared by its implementations.
package catalog

import (
	"context"
	"errors"

	"setmatch-service/internal/setmatch/model"
)

var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrUnavailable = errors.New("catalog: unavailable")
)

// Store is the catalog of official sets. Implementations are safe for
// concurrent use and never mutate the catalog.
type Store interface {
	// Candidates returns the latest inventory of every set whose non-spare parts
	// share at least one key with keys. themeIDs nil means every theme.
	Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error)
	// Inventories returns candidate metadata and required parts per inventory.
	// Unknown IDs are omitted.
	Inventories(ctx context.Context, inventoryIDs []int64) ([]model.Inventory, error)
	// SetInventory returns the latest inventory of setNum, spares included.
	SetInventory(ctx context.Context, setNum string) (model.SetInventory, error)
	Themes(ctx context.Context) ([]model.Theme, error)
	CountSets(ctx context.Context, themeIDs []int) (int, error)
}
