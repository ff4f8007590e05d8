package sqlstore

// Table rows mirror the Rebrickable dump columns so the dumps can be bulk
// loaded without renaming.

type Theme struct {
	ID       int    `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"not null"`
	ParentID *int
}

func (Theme) TableName() string { return "themes" }

type Color struct {
	ID      int    `gorm:"primaryKey;autoIncrement:false"`
	Name    string `gorm:"not null"`
	RGB     string `gorm:"column:rgb"`
	IsTrans bool
}

func (Color) TableName() string { return "colors" }

type Part struct {
	PartNum      string `gorm:"primaryKey"`
	Name         string
	PartCatID    int
	PartMaterial string
}

func (Part) TableName() string { return "parts" }

type Set struct {
	SetNum   string `gorm:"primaryKey"`
	Name     string
	Year     int
	ThemeID  int `gorm:"index"`
	NumParts int
}

func (Set) TableName() string { return "sets" }

type Inventory struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	Version int
	SetNum  string `gorm:"index"`
}

func (Inventory) TableName() string { return "inventories" }

// InventoryPart has no primary key in the dumps. The (part_num, color_id)
// index is the inverted index the candidate query relies on.
type InventoryPart struct {
	InventoryID int64  `gorm:"index"`
	PartNum     string `gorm:"index:idx_inventory_parts_key,priority:1"`
	ColorID     int    `gorm:"index:idx_inventory_parts_key,priority:2"`
	Quantity    int
	IsSpare     bool
}

func (InventoryPart) TableName() string { return "inventory_parts" }

func allModels() []any {
	return []any{&Theme{}, &Color{}, &Part{}, &Set{}, &Inventory{}, &InventoryPart{}}
}
