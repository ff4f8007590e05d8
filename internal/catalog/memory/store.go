// Package memory is an in-process catalog backed by an inverted index from
// (part_num, color_id) to inventory IDs.
package memory

import (
	"context"
	"fmt"
	"sort"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

type inventory struct {
	id       int64
	version  int
	setNum   string
	lines    []partLine
	required []model.PartRecord
	total    int
}

// Store is immutable after Build and safe for concurrent reads.
type Store struct {
	tree   *catalog.ThemeTree
	sets   map[string]model.Set
	colors map[int]color
	parts  map[string]string
	latest map[string]*inventory
	byID   map[int64]*inventory
	index  map[model.PartKey][]int64
}

var _ catalog.Store = (*Store)(nil)

// Stats reports table sizes, used for startup logging.
type Stats struct {
	Sets        int
	Inventories int
	Keys        int
	Themes      int
}

func (s *Store) Stats() Stats {
	return Stats{Sets: len(s.sets), Inventories: len(s.byID), Keys: len(s.index), Themes: len(s.tree.All())}
}

func (s *Store) candidate(inv *inventory) model.CandidateSet {
	set := s.sets[inv.setNum]
	theme, _ := s.tree.Theme(set.ThemeID)
	return model.CandidateSet{
		InventoryID: inv.id,
		SetNum:      set.SetNum,
		Name:        set.Name,
		Year:        set.Year,
		TotalParts:  inv.total,
		Theme:       theme.Name,
	}
}

func (s *Store) Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter := catalog.IDSet(themeIDs)
	seen := make(map[int64]struct{})
	for _, k := range keys {
		for _, id := range s.index[k] {
			seen[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]model.CandidateSet, 0, len(ids))
	for _, id := range ids {
		inv := s.byID[id]
		if filter != nil {
			if _, ok := filter[s.sets[inv.setNum].ThemeID]; !ok {
				continue
			}
		}
		out = append(out, s.candidate(inv))
	}
	return out, nil
}

func (s *Store) Inventories(ctx context.Context, ids []int64) ([]model.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Inventory, 0, len(ids))
	for _, id := range ids {
		inv, ok := s.byID[id]
		if !ok {
			continue
		}
		parts := make([]model.PartRecord, len(inv.required))
		copy(parts, inv.required)
		out = append(out, model.Inventory{CandidateSet: s.candidate(inv), Parts: parts})
	}
	return out, nil
}

func (s *Store) SetInventory(ctx context.Context, setNum string) (model.SetInventory, error) {
	if err := ctx.Err(); err != nil {
		return model.SetInventory{}, err
	}
	inv, ok := s.latest[setNum]
	if !ok {
		return model.SetInventory{}, fmt.Errorf("set %s: %w", setNum, catalog.ErrNotFound)
	}
	lines := make([]model.InventoryLine, 0, len(inv.lines))
	for _, l := range inv.lines {
		c := s.colors[l.colorID]
		lines = append(lines, model.InventoryLine{
			PartNum:   l.partNum,
			ColorID:   l.colorID,
			Quantity:  l.quantity,
			IsSpare:   l.isSpare,
			PartName:  s.parts[l.partNum],
			ColorName: c.name,
			ColorRGB:  c.rgb,
		})
	}
	return model.SetInventory{
		Set:         s.sets[setNum],
		InventoryID: inv.id,
		Version:     inv.version,
		Lines:       lines,
	}, nil
}

func (s *Store) Themes(ctx context.Context) ([]model.Theme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.tree.All(), nil
}

func (s *Store) CountSets(ctx context.Context, themeIDs []int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	filter := catalog.IDSet(themeIDs)
	if filter == nil {
		return len(s.sets), nil
	}
	n := 0
	for _, set := range s.sets {
		if _, ok := filter[set.ThemeID]; ok {
			n++
		}
	}
	return n, nil
}
