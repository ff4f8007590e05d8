package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/setmatch/model"
)

func intp(v int) *int { return &v }

func seed(t *testing.T, s *Store) {
	t.Helper()
	im := s.Importer(2)
	im.AddTheme(model.Theme{ID: 1, Name: "Star Wars"})
	im.AddTheme(model.Theme{ID: 2, Name: "Episode IV", ParentID: intp(1)})
	im.AddTheme(model.Theme{ID: 3, Name: "Technic"})
	im.AddColor(0, "Black", "05131D")
	im.AddColor(15, "White", "FFFFFF")
	im.AddPart("3001", "Brick 2 x 4")
	im.AddPart("3002", "Brick 2 x 3")
	im.AddSet(model.Set{SetNum: "75301-1", Name: "X-Wing", Year: 2021, ThemeID: 2})
	im.AddSet(model.Set{SetNum: "42100-1", Name: "Excavator", Year: 2019, ThemeID: 3})
	im.AddSet(model.Set{SetNum: "1000-1", Name: "Spares only", Year: 1990, ThemeID: 3})
	im.AddInventory(10, 1, "75301-1")
	im.AddInventory(11, 2, "75301-1")
	im.AddInventoryPart(10, "9999", 0, 1, false)
	im.AddInventoryPart(11, "3001", 0, 4, false)
	im.AddInventoryPart(11, "3002", 0, 2, false)
	im.AddInventoryPart(11, "3001", 0, 1, false)
	im.AddInventoryPart(11, "3003", 15, 1, true)
	im.AddInventory(20, 1, "42100-1")
	im.AddInventoryPart(20, "3001", 15, 3, false)
	im.AddInventory(30, 1, "1000-1")
	im.AddInventoryPart(30, "3001", 0, 1, true)
	im.AddInventory(40, 1, "nope-1")
	im.AddInventoryPart(40, "3001", 0, 1, false)
	if err := im.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func openSQLite(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(Options{
		Driver:      "sqlite",
		DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		AutoMigrate: true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	seed(t, s)
	return s
}

// openPostgres runs the same suite against a real server when one is given.
func openPostgres(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	s, err := Open(Options{Driver: "postgres", DSN: dsn, AutoMigrate: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	seed(t, s)
	return s
}

func TestStore(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *Store{
		"sqlite":   openSQLite,
		"postgres": openPostgres,
	} {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Run("candidates", func(t *testing.T) { testCandidates(t, s) })
			t.Run("inventories", func(t *testing.T) { testInventories(t, s) })
			t.Run("set inventory", func(t *testing.T) { testSetInventory(t, s) })
			t.Run("count and themes", func(t *testing.T) { testCountAndThemes(t, s) })
		})
	}
}

func testCandidates(t *testing.T, s *Store) {
	ctx := context.Background()

	got, err := s.Candidates(ctx, []model.PartKey{{PartNum: "3001", ColorID: 0}}, nil)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %+v, want only 75301-1", got)
	}
	if c := got[0]; c.InventoryID != 11 || c.SetNum != "75301-1" || c.TotalParts != 7 || c.Theme != "Episode IV" {
		t.Errorf("candidate = %+v", c)
	}

	got, _ = s.Candidates(ctx, []model.PartKey{{PartNum: "3003", ColorID: 15}, {PartNum: "9999", ColorID: 0}}, nil)
	if len(got) != 0 {
		t.Errorf("spares and old versions matched: %+v", got)
	}

	keys := []model.PartKey{{PartNum: "3001", ColorID: 0}, {PartNum: "3001", ColorID: 15}}
	got, _ = s.Candidates(ctx, keys, []int{3})
	if len(got) != 1 || got[0].SetNum != "42100-1" {
		t.Errorf("theme filtered = %+v, want 42100-1", got)
	}
	got, _ = s.Candidates(ctx, keys, []int{})
	if len(got) != 0 {
		t.Errorf("empty filter = %+v, want none", got)
	}
	got, _ = s.Candidates(ctx, keys, nil)
	if len(got) != 2 || got[0].InventoryID != 11 || got[1].InventoryID != 20 {
		t.Errorf("unfiltered = %+v, want inventories 11 and 20", got)
	}
}

func TestCandidatesChunked(t *testing.T) {
	s := openSQLite(t)
	keys := make([]model.PartKey, 0, keyChunk*2+1)
	for i := 0; i < keyChunk*2; i++ {
		keys = append(keys, model.PartKey{PartNum: fmt.Sprintf("x%d", i), ColorID: 1})
	}
	keys = append(keys, model.PartKey{PartNum: "3001", ColorID: 15})
	got, err := s.Candidates(context.Background(), keys, nil)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 1 || got[0].SetNum != "42100-1" {
		t.Errorf("candidates = %+v, want 42100-1 from the last chunk", got)
	}
}

func testInventories(t *testing.T, s *Store) {
	got, err := s.Inventories(context.Background(), []int64{20, 999, 11})
	if err != nil {
		t.Fatalf("Inventories: %v", err)
	}
	if len(got) != 2 || got[0].InventoryID != 20 || got[1].InventoryID != 11 {
		t.Fatalf("inventories = %+v, want 20 then 11", got)
	}
	want := []model.PartRecord{
		{PartNum: "3001", ColorID: 0, Quantity: 5},
		{PartNum: "3002", ColorID: 0, Quantity: 2},
	}
	parts := got[1].Parts
	if len(parts) != len(want) {
		t.Fatalf("parts = %+v, want %+v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("parts[%d] = %+v, want %+v", i, parts[i], want[i])
		}
	}
}

func testSetInventory(t *testing.T, s *Store) {
	ctx := context.Background()
	inv, err := s.SetInventory(ctx, "75301-1")
	if err != nil {
		t.Fatalf("SetInventory: %v", err)
	}
	if inv.InventoryID != 11 || inv.Version != 2 || len(inv.Lines) != 4 {
		t.Fatalf("inventory = %+v", inv)
	}
	if l := inv.Lines[0]; l.PartName != "Brick 2 x 4" || l.ColorName != "Black" || l.ColorRGB != "05131D" {
		t.Errorf("line[0] = %+v", l)
	}
	if l := inv.Lines[3]; !l.IsSpare || l.PartName != "" || l.ColorName != "White" {
		t.Errorf("line[3] = %+v, want unnamed white spare", l)
	}
	if _, err := s.SetInventory(ctx, "0000-1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func testCountAndThemes(t *testing.T, s *Store) {
	ctx := context.Background()
	if n, err := s.CountSets(ctx, nil); err != nil || n != 3 {
		t.Errorf("CountSets(nil) = %d, %v, want 3", n, err)
	}
	if n, _ := s.CountSets(ctx, []int{3}); n != 2 {
		t.Errorf("CountSets(technic) = %d, want 2", n)
	}
	if n, _ := s.CountSets(ctx, []int{}); n != 0 {
		t.Errorf("CountSets(empty) = %d, want 0", n)
	}
	themes, err := s.Themes(ctx)
	if err != nil {
		t.Fatalf("Themes: %v", err)
	}
	if len(themes) != 3 || themes[0].Name != "Star Wars" || themes[1].ParentID == nil || *themes[1].ParentID != 1 {
		t.Errorf("themes = %+v", themes)
	}
}

func TestFlushReplaces(t *testing.T) {
	s := openSQLite(t)
	seed(t, s)
	if n, _ := s.CountSets(context.Background(), nil); n != 3 {
		t.Errorf("sets after second import = %d, want 3", n)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"admin shutdown", &pgconn.PgError{Code: "57P01", Message: "terminating connection"}, catalog.ErrUnavailable},
		{"connection failure", &pgconn.PgError{Code: "08006"}, catalog.ErrUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, catalog.ErrUnavailable},
		{"syntax error", &pgconn.PgError{Code: "42601"}, nil},
		{"cancelled", context.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			if tt.want == nil {
				if errors.Is(got, catalog.ErrUnavailable) {
					t.Errorf("classify(%v) = %v, should not be unavailable", tt.err, got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	if classify("op", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}
