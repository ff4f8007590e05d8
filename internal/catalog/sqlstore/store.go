// Package sqlstore serves the catalog from a relational database through gorm.
// Postgres is the production target; SQLite backs local runs and tests.
package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

// keyChunk bounds the number of row-value pairs bound into one candidate query.
const keyChunk = 500

type Options struct {
	Driver       string // postgres | sqlite
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
	SlowQuery    time.Duration
}

type Store struct {
	db *gorm.DB
}

var _ catalog.Store = (*Store)(nil)

// Open connects to the database named by opts and optionally migrates the schema.
func Open(opts Options, logger zerolog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("sqlstore: unknown driver %q", opts.Driver)
	}

	slow := opts.SlowQuery
	if slow == 0 {
		slow = 500 * time.Millisecond
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newLogger(logger, slow),
		SkipDefaultTransaction: true,
		PrepareStmt:            opts.Driver == "postgres",
	})
	if err != nil {
		return nil, classify("open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	s := New(db)
	if opts.AutoMigrate {
		if err := s.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return classify("migrate", err)
	}
	return nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return classify("ping", sqlDB.PingContext(ctx))
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type candidateRow struct {
	InventoryID int64  `gorm:"column:inventory_id"`
	SetNum      string `gorm:"column:set_num"`
	Name        string `gorm:"column:name"`
	Year        int    `gorm:"column:year"`
	TotalParts  int    `gorm:"column:total_parts"`
	Theme       string `gorm:"column:theme"`
}

func (r candidateRow) candidate() model.CandidateSet {
	return model.CandidateSet{
		InventoryID: r.InventoryID,
		SetNum:      r.SetNum,
		Name:        r.Name,
		Year:        r.Year,
		TotalParts:  r.TotalParts,
		Theme:       r.Theme,
	}
}

const candidateSelect = `
SELECT i.id AS inventory_id, s.set_num, s.name, s.year, COALESCE(t.name, '') AS theme,
	(SELECT COALESCE(SUM(p.quantity), 0) FROM inventory_parts p
		WHERE p.inventory_id = i.id AND p.is_spare = ? AND p.quantity > 0) AS total_parts
FROM inventories i
JOIN sets s ON s.set_num = i.set_num
LEFT JOIN themes t ON t.id = s.theme_id
WHERE i.id = (SELECT i2.id FROM inventories i2 WHERE i2.set_num = i.set_num
		ORDER BY i2.version DESC, i2.id DESC LIMIT 1)`

func (s *Store) Candidates(ctx context.Context, keys []model.PartKey, themeIDs []int) ([]model.CandidateSet, error) {
	if len(keys) == 0 || (themeIDs != nil && len(themeIDs) == 0) {
		return []model.CandidateSet{}, nil
	}

	seen := make(map[int64]model.CandidateSet)
	for start := 0; start < len(keys); start += keyChunk {
		end := min(start+keyChunk, len(keys))
		pairs := make([][]any, 0, end-start)
		for _, k := range keys[start:end] {
			pairs = append(pairs, []any{k.PartNum, k.ColorID})
		}

		query := candidateSelect + `
	AND i.id IN (SELECT ip.inventory_id FROM inventory_parts ip
		WHERE ip.is_spare = ? AND ip.quantity > 0 AND (ip.part_num, ip.color_id) IN ?)`
		args := []any{false, false, pairs}
		if themeIDs != nil {
			query += "\n\tAND s.theme_id IN ?"
			args = append(args, themeIDs)
		}

		var rows []candidateRow
		if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
			return nil, classify("candidates", err)
		}
		for _, r := range rows {
			seen[r.InventoryID] = r.candidate()
		}
	}

	out := make([]model.CandidateSet, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryID < out[j].InventoryID })
	return out, nil
}

type requiredRow struct {
	InventoryID int64  `gorm:"column:inventory_id"`
	PartNum     string `gorm:"column:part_num"`
	ColorID     int    `gorm:"column:color_id"`
	Quantity    int    `gorm:"column:quantity"`
}

func (s *Store) Inventories(ctx context.Context, ids []int64) ([]model.Inventory, error) {
	if len(ids) == 0 {
		return []model.Inventory{}, nil
	}
	db := s.db.WithContext(ctx)

	var meta []candidateRow
	if err := db.Raw(candidateSelect+"\n\tAND i.id IN ?", false, ids).Scan(&meta).Error; err != nil {
		return nil, classify("inventories", err)
	}

	var parts []requiredRow
	err := db.Raw(`
SELECT inventory_id, part_num, color_id, SUM(quantity) AS quantity
FROM inventory_parts
WHERE is_spare = ? AND quantity > 0 AND inventory_id IN ?
GROUP BY inventory_id, part_num, color_id
ORDER BY inventory_id, part_num, color_id`, false, ids).Scan(&parts).Error
	if err != nil {
		return nil, classify("inventory parts", err)
	}

	byID := make(map[int64]*model.Inventory, len(meta))
	for _, m := range meta {
		byID[m.InventoryID] = &model.Inventory{CandidateSet: m.candidate(), Parts: []model.PartRecord{}}
	}
	for _, p := range parts {
		inv, ok := byID[p.InventoryID]
		if !ok {
			continue
		}
		inv.Parts = append(inv.Parts, model.PartRecord{PartNum: p.PartNum, ColorID: p.ColorID, Quantity: p.Quantity})
	}

	out := make([]model.Inventory, 0, len(byID))
	for _, id := range ids {
		if inv, ok := byID[id]; ok {
			out = append(out, *inv)
			delete(byID, id)
		}
	}
	return out, nil
}

type lineRow struct {
	PartNum   string `gorm:"column:part_num"`
	ColorID   int    `gorm:"column:color_id"`
	Quantity  int    `gorm:"column:quantity"`
	IsSpare   bool   `gorm:"column:is_spare"`
	PartName  string `gorm:"column:part_name"`
	ColorName string `gorm:"column:color_name"`
	ColorRGB  string `gorm:"column:color_rgb"`
}

func (s *Store) SetInventory(ctx context.Context, setNum string) (model.SetInventory, error) {
	db := s.db.WithContext(ctx)

	var set Set
	if err := db.Where("set_num = ?", setNum).First(&set).Error; err != nil {
		return model.SetInventory{}, classify("set "+setNum, err)
	}
	var inv Inventory
	if err := db.Where("set_num = ?", setNum).Order("version DESC, id DESC").First(&inv).Error; err != nil {
		return model.SetInventory{}, classify("set "+setNum, err)
	}

	var rows []lineRow
	err := db.Raw(`
SELECT ip.part_num, ip.color_id, ip.quantity, ip.is_spare,
	COALESCE(p.name, '') AS part_name, COALESCE(c.name, '') AS color_name, COALESCE(c.rgb, '') AS color_rgb
FROM inventory_parts ip
LEFT JOIN parts p ON p.part_num = ip.part_num
LEFT JOIN colors c ON c.id = ip.color_id
WHERE ip.inventory_id = ?
ORDER BY ip.part_num, ip.color_id, ip.is_spare`, inv.ID).Scan(&rows).Error
	if err != nil {
		return model.SetInventory{}, classify("set "+setNum, err)
	}

	lines := make([]model.InventoryLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, model.InventoryLine(r))
	}
	return model.SetInventory{
		Set: model.Set{
			SetNum:   set.SetNum,
			Name:     set.Name,
			Year:     set.Year,
			ThemeID:  set.ThemeID,
			NumParts: set.NumParts,
		},
		InventoryID: inv.ID,
		Version:     inv.Version,
		Lines:       lines,
	}, nil
}

func (s *Store) Themes(ctx context.Context) ([]model.Theme, error) {
	var rows []Theme
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, classify("themes", err)
	}
	out := make([]model.Theme, 0, len(rows))
	for _, t := range rows {
		out = append(out, model.Theme{ID: t.ID, Name: t.Name, ParentID: t.ParentID})
	}
	return out, nil
}

func (s *Store) CountSets(ctx context.Context, themeIDs []int) (int, error) {
	if themeIDs != nil && len(themeIDs) == 0 {
		return 0, nil
	}
	q := s.db.WithContext(ctx).Model(&Set{})
	if themeIDs != nil {
		q = q.Where("theme_id IN ?", themeIDs)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, classify("count sets", err)
	}
	return int(n), nil
}
