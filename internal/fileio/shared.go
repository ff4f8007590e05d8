package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported file type")

// ReadRows picks a reader by extension and returns the sheet as rows of cells,
// header row included. Files without an extension are read as delimited text.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv", ".txt", ".tsv", "":
		return ReadDelimited(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
}

// dropEmptyRows removes rows whose cells are all blank.
func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, rec := range rows {
		empty := true
		for _, v := range rec {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// normalizeCell trims a spreadsheet cell and removes non-breaking spaces.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
