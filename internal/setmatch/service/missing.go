package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

// SetInventory returns the latest bill of materials of setNum, spares included.
func (s *Service) SetInventory(ctx context.Context, setNum string) (model.SetInventory, error) {
	inv, err := s.store.SetInventory(ctx, setNum)
	if errors.Is(err, catalog.ErrNotFound) {
		return model.SetInventory{}, &NotFoundError{SetNum: setNum, Err: err}
	}
	if err != nil {
		return model.SetInventory{}, fmt.Errorf("set inventory %s: %w", setNum, err)
	}
	return inv, nil
}

// MissingParts lists what inv lacks to build setNum, one row per short
// (part, color) key ordered by part number then color. Full coverage gives an
// empty report.
func (s *Service) MissingParts(ctx context.Context, setNum string, inv model.UserInventory) (model.MissingPartsReport, error) {
	set, err := s.SetInventory(ctx, setNum)
	if err != nil {
		return nil, err
	}
	return missingParts(set.Lines, inv.Quantities()), nil
}

func missingParts(lines []model.InventoryLine, owned map[model.PartKey]int) model.MissingPartsReport {
	need := make(map[model.PartKey]*model.MissingPart)
	for _, l := range lines {
		if l.IsSpare || l.Quantity < 1 || l.PartNum == "" {
			continue
		}
		k := model.PartKey{PartNum: l.PartNum, ColorID: l.ColorID}
		mp, ok := need[k]
		if !ok {
			mp = &model.MissingPart{PartNum: l.PartNum, ColorID: l.ColorID, PartName: l.PartName, ColorName: l.ColorName}
			need[k] = mp
		}
		mp.MissingQty += l.Quantity
	}

	report := make(model.MissingPartsReport, 0, len(need))
	for k, mp := range need {
		mp.MissingQty -= owned[k]
		if mp.MissingQty > 0 {
			report = append(report, *mp)
		}
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].PartNum != report[j].PartNum {
			return report[i].PartNum < report[j].PartNum
		}
		return report[i].ColorID < report[j].ColorID
	})
	return report
}
