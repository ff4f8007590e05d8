// Package rebrickable loads the Rebrickable catalog dumps (themes, colors,
// parts, sets, inventories, inventory_parts) into the in-memory catalog.
package rebrickable

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog/memory"
	"setmatch-service/internal/setmatch/model"
	"setmatch-service/internal/utils"
)

// Sink receives catalog rows in table order: themes, colors, parts, sets,
// inventories, inventory_parts. memory.Builder is one.
type Sink interface {
	AddTheme(t model.Theme)
	AddColor(id int, name, rgb string)
	AddPart(partNum, name string)
	AddSet(s model.Set)
	AddInventory(id int64, version int, setNum string)
	AddInventoryPart(inventoryID int64, partNum string, colorID, quantity int, isSpare bool)
}

var _ Sink = (*memory.Builder)(nil)

// table describes one dump file and the columns it must carry.
type table struct {
	name     string
	required bool
	columns  []string
	row      func(b Sink, get func(string) string) error
}

var tables = []table{
	{"themes", false, []string{"id", "name", "parent_id"}, themeRow},
	{"colors", false, []string{"id", "name", "rgb"}, colorRow},
	{"parts", false, []string{"part_num", "name"}, partRow},
	{"sets", true, []string{"set_num", "name", "year", "theme_id", "num_parts"}, setRow},
	{"inventories", true, []string{"id", "version", "set_num"}, inventoryRow},
	{"inventory_parts", true, []string{"inventory_id", "part_num", "color_id", "quantity", "is_spare"}, inventoryPartRow},
}

// Stats counts loaded and skipped rows per table.
type Stats struct {
	Loaded  map[string]int
	Skipped map[string]int
}

// LoadDir reads the dumps from a directory on disk into an in-memory catalog.
func LoadDir(dir string, logger zerolog.Logger) (*memory.Store, Stats, error) {
	return LoadFS(os.DirFS(dir), logger)
}

// LoadFS reads the dumps from fsys into an in-memory catalog.
func LoadFS(fsys fs.FS, logger zerolog.Logger) (*memory.Store, Stats, error) {
	start := time.Now()
	b := memory.NewBuilder()
	st, err := Load(fsys, b, logger)
	if err != nil {
		return nil, st, err
	}
	store := b.Build()
	s := store.Stats()
	logger.Info().
		Int("sets", s.Sets).
		Int("inventories", s.Inventories).
		Int("keys", s.Keys).
		Int("themes", s.Themes).
		Dur("elapsed", time.Since(start)).
		Msg("catalog loaded")
	return store, st, nil
}

// Load reads <table>.csv or <table>.csv.gz for every table into sink. Rows
// that fail to parse are skipped and counted; a missing required table is an error.
func Load(fsys fs.FS, sink Sink, logger zerolog.Logger) (Stats, error) {
	st := Stats{Loaded: map[string]int{}, Skipped: map[string]int{}}
	for _, t := range tables {
		f, name, err := openTable(fsys, t.name)
		if errors.Is(err, fs.ErrNotExist) {
			if t.required {
				return st, fmt.Errorf("rebrickable: %s.csv not found", t.name)
			}
			logger.Warn().Str("table", t.name).Msg("optional catalog table missing")
			continue
		}
		if err != nil {
			return st, fmt.Errorf("rebrickable: open %s: %w", t.name, err)
		}
		loaded, skipped, err := readTable(f, t, sink)
		f.Close()
		if err != nil {
			return st, fmt.Errorf("rebrickable: %s: %w", name, err)
		}
		st.Loaded[t.name], st.Skipped[t.name] = loaded, skipped
		logger.Debug().Str("file", name).Int("rows", loaded).Int("skipped", skipped).Msg("catalog table loaded")
	}
	return st, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func openTable(fsys fs.FS, name string) (io.ReadCloser, string, error) {
	plain := name + ".csv"
	if f, err := fsys.Open(plain); err == nil {
		return f, plain, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, plain, err
	}

	gzName := plain + ".gz"
	f, err := fsys.Open(gzName)
	if err != nil {
		return nil, gzName, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, gzName, err
	}
	return &readCloser{Reader: zr, closers: []io.Closer{f, zr}}, gzName, nil
}

func readTable(r io.Reader, t table, b Sink) (loaded, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	for _, c := range t.columns {
		if _, ok := idx[c]; !ok {
			return 0, 0, fmt.Errorf("missing column %q", c)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return loaded, skipped, err
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := t.row(b, get); err != nil {
			skipped++
			continue
		}
		loaded++
	}
	return loaded, skipped, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}
	return strconv.Atoi(s)
}

func themeRow(b Sink, get func(string) string) error {
	id, err := atoi(get("id"))
	if err != nil {
		return err
	}
	th := model.Theme{ID: id, Name: get("name")}
	if p, err := atoi(get("parent_id")); err == nil {
		th.ParentID = &p
	}
	b.AddTheme(th)
	return nil
}

func colorRow(b Sink, get func(string) string) error {
	id, err := atoi(get("id"))
	if err != nil {
		return err
	}
	b.AddColor(id, get("name"), get("rgb"))
	return nil
}

func partRow(b Sink, get func(string) string) error {
	num := get("part_num")
	if num == "" {
		return errors.New("empty part_num")
	}
	b.AddPart(num, get("name"))
	return nil
}

func setRow(b Sink, get func(string) string) error {
	num := get("set_num")
	if num == "" {
		return errors.New("empty set_num")
	}
	year, _ := atoi(get("year"))
	theme, err := atoi(get("theme_id"))
	if err != nil {
		return err
	}
	parts, _ := atoi(get("num_parts"))
	b.AddSet(model.Set{SetNum: num, Name: get("name"), Year: year, ThemeID: theme, NumParts: parts})
	return nil
}

func inventoryRow(b Sink, get func(string) string) error {
	id, err := strconv.ParseInt(get("id"), 10, 64)
	if err != nil {
		return err
	}
	version, err := atoi(get("version"))
	if err != nil {
		version = 1
	}
	b.AddInventory(id, version, get("set_num"))
	return nil
}

func inventoryPartRow(b Sink, get func(string) string) error {
	inv, err := strconv.ParseInt(get("inventory_id"), 10, 64)
	if err != nil {
		return err
	}
	num := get("part_num")
	if num == "" {
		return errors.New("empty part_num")
	}
	color, err := atoi(get("color_id"))
	if err != nil {
		return err
	}
	qty, err := atoi(get("quantity"))
	if err != nil || qty < 1 {
		return fmt.Errorf("bad quantity %q", get("quantity"))
	}
	b.AddInventoryPart(inv, num, color, qty, utils.ParseBool(get("is_spare")))
	return nil
}
