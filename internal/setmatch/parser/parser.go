// Package parser turns an uploaded parts list into a UserInventory.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"setmatch-service/internal/fileio"
	"setmatch-service/internal/setmatch/model"
	"setmatch-service/internal/utils"
)

var (
	ErrEmpty        = errors.New("inventory file is empty")
	ErrNoPartColumn = errors.New(`column "part_num" not found`)
)

// ParseError reports an upload that cannot yield any inventory at all.
// Individual bad rows never produce one.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse inventory: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ParseReader reads an uploaded file (delimited text, .xlsx or .xls) and parses it.
func ParseReader(r io.Reader, filename string) (model.UserInventory, error) {
	rows, err := fileio.ReadRows(r, filename)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return Parse(rows)
}

// ParseText parses delimited text directly.
func ParseText(text string) (model.UserInventory, error) {
	return ParseReader(strings.NewReader(text), "")
}

// Parse reads rows[0] as the header and every following row as a part line.
// Short rows and rows with an empty part number are dropped; a bad quantity
// becomes 1 and a missing or unreadable color becomes model.UnknownColor.
func Parse(rows [][]string) (model.UserInventory, error) {
	if len(rows) == 0 {
		return nil, &ParseError{Err: ErrEmpty}
	}
	cols := ResolveColumns(rows[0])
	if cols.PartNum < 0 {
		return nil, &ParseError{Err: fmt.Errorf("%w in header %q", ErrNoPartColumn, strings.Join(rows[0], ","))}
	}

	inv := make(model.UserInventory, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		if len(rec) <= cols.PartNum {
			continue
		}
		partNum := strings.Trim(strings.TrimSpace(rec[cols.PartNum]), `"`)
		if partNum == "" {
			continue
		}
		inv = append(inv, model.PartRecord{
			PartNum:  partNum,
			ColorID:  colorAt(rec, cols.Color),
			Quantity: quantityAt(rec, cols.Quantity),
		})
	}
	return inv, nil
}

func colorAt(rec []string, idx int) int {
	if idx < 0 || idx >= len(rec) {
		return model.UnknownColor
	}
	c, ok := utils.ParseLeadingInt(rec[idx])
	if !ok || c < model.UnknownColor {
		return model.UnknownColor
	}
	return c
}

func quantityAt(rec []string, idx int) int {
	if idx < 0 || idx >= len(rec) {
		return 1
	}
	q, ok := utils.ParseLeadingInt(rec[idx])
	if !ok || q < 1 {
		return 1
	}
	return min(q, model.MaxQuantity)
}
