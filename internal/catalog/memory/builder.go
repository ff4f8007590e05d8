package memory

import (
	"sort"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

type color struct {
	name string
	rgb  string
}

type inventoryRow struct {
	id      int64
	version int
	setNum  string
}

type partLine struct {
	partNum  string
	colorID  int
	quantity int
	isSpare  bool
}

// Builder collects catalog tables and produces an immutable Store.
// It is not safe for concurrent use.
type Builder struct {
	themes      []model.Theme
	colors      map[int]color
	parts       map[string]string
	sets        map[string]model.Set
	inventories map[int64]inventoryRow
	lines       map[int64][]partLine
}

func NewBuilder() *Builder {
	return &Builder{
		colors:      make(map[int]color),
		parts:       make(map[string]string),
		sets:        make(map[string]model.Set),
		inventories: make(map[int64]inventoryRow),
		lines:       make(map[int64][]partLine),
	}
}

func (b *Builder) AddTheme(t model.Theme) {
	b.themes = append(b.themes, t)
}

func (b *Builder) AddColor(id int, name, rgb string) {
	b.colors[id] = color{name: name, rgb: rgb}
}

func (b *Builder) AddPart(partNum, name string) {
	b.parts[partNum] = name
}

func (b *Builder) AddSet(s model.Set) {
	b.sets[s.SetNum] = s
}

func (b *Builder) AddInventory(id int64, version int, setNum string) {
	b.inventories[id] = inventoryRow{id: id, version: version, setNum: setNum}
}

func (b *Builder) AddInventoryPart(inventoryID int64, partNum string, colorID, quantity int, isSpare bool) {
	b.lines[inventoryID] = append(b.lines[inventoryID], partLine{
		partNum:  partNum,
		colorID:  colorID,
		quantity: quantity,
		isSpare:  isSpare,
	})
}

// Build keeps the highest inventory version of every known set and indexes
// its non-spare part keys.
func (b *Builder) Build() *Store {
	s := &Store{
		tree:   catalog.NewThemeTree(b.themes),
		sets:   make(map[string]model.Set, len(b.sets)),
		colors: b.colors,
		parts:  b.parts,
		latest: make(map[string]*inventory),
		byID:   make(map[int64]*inventory),
		index:  make(map[model.PartKey][]int64),
	}
	for k, v := range b.sets {
		s.sets[k] = v
	}

	for _, row := range b.inventories {
		if _, ok := b.sets[row.setNum]; !ok {
			continue
		}
		cur, ok := s.latest[row.setNum]
		if ok && (cur.version > row.version || (cur.version == row.version && cur.id > row.id)) {
			continue
		}
		s.latest[row.setNum] = &inventory{id: row.id, version: row.version, setNum: row.setNum}
	}

	for _, inv := range s.latest {
		inv.lines = b.lines[inv.id]
		required := make(map[model.PartKey]int)
		for _, l := range inv.lines {
			if l.isSpare || l.quantity < 1 {
				continue
			}
			required[model.PartKey{PartNum: l.partNum, ColorID: l.colorID}] += l.quantity
		}
		inv.required = make([]model.PartRecord, 0, len(required))
		for k, q := range required {
			inv.required = append(inv.required, model.PartRecord{PartNum: k.PartNum, ColorID: k.ColorID, Quantity: q})
			inv.total += q
			s.index[k] = append(s.index[k], inv.id)
		}
		sort.Slice(inv.required, func(i, j int) bool { return lessRecord(inv.required[i], inv.required[j]) })
		s.byID[inv.id] = inv
	}
	for k := range s.index {
		ids := s.index[k]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return s
}

func lessRecord(a, b model.PartRecord) bool {
	if a.PartNum != b.PartNum {
		return a.PartNum < b.PartNum
	}
	return a.ColorID < b.ColorID
}
