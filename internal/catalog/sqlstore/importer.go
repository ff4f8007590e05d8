package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"setmatch-service/internal/catalog/rebrickable"
	"setmatch-service/internal/setmatch/model"
)

var _ rebrickable.Sink = (*Importer)(nil)

// Importer buffers catalog rows from the dump loader and writes them in one
// transaction on Flush. It is not safe for concurrent use.
type Importer struct {
	db        *gorm.DB
	batchSize int

	themes      []Theme
	colors      []Color
	parts       []Part
	sets        []Set
	inventories []Inventory
	lines       []InventoryPart
}

func (s *Store) Importer(batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Importer{db: s.db, batchSize: batchSize}
}

func (im *Importer) AddTheme(t model.Theme) {
	im.themes = append(im.themes, Theme{ID: t.ID, Name: t.Name, ParentID: t.ParentID})
}

func (im *Importer) AddColor(id int, name, rgb string) {
	im.colors = append(im.colors, Color{ID: id, Name: name, RGB: rgb})
}

func (im *Importer) AddPart(partNum, name string) {
	im.parts = append(im.parts, Part{PartNum: partNum, Name: name})
}

func (im *Importer) AddSet(s model.Set) {
	im.sets = append(im.sets, Set{SetNum: s.SetNum, Name: s.Name, Year: s.Year, ThemeID: s.ThemeID, NumParts: s.NumParts})
}

func (im *Importer) AddInventory(id int64, version int, setNum string) {
	im.inventories = append(im.inventories, Inventory{ID: id, Version: version, SetNum: setNum})
}

func (im *Importer) AddInventoryPart(inventoryID int64, partNum string, colorID, quantity int, isSpare bool) {
	im.lines = append(im.lines, InventoryPart{
		InventoryID: inventoryID,
		PartNum:     partNum,
		ColorID:     colorID,
		Quantity:    quantity,
		IsSpare:     isSpare,
	})
}

// Flush replaces the catalog tables with the buffered rows.
func (im *Importer) Flush(ctx context.Context) error {
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&InventoryPart{}, &Inventory{}, &Set{}, &Part{}, &Color{}, &Theme{}} {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		steps := []struct {
			name string
			rows any
			n    int
		}{
			{"themes", im.themes, len(im.themes)},
			{"colors", im.colors, len(im.colors)},
			{"parts", im.parts, len(im.parts)},
			{"sets", im.sets, len(im.sets)},
			{"inventories", im.inventories, len(im.inventories)},
			{"inventory_parts", im.lines, len(im.lines)},
		}
		for _, st := range steps {
			if st.n == 0 {
				continue
			}
			if err := tx.CreateInBatches(st.rows, im.batchSize).Error; err != nil {
				return fmt.Errorf("insert %s: %w", st.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return classify("import", err)
	}
	im.themes, im.colors, im.parts, im.sets, im.inventories, im.lines = nil, nil, nil, nil, nil, nil
	return nil
}
