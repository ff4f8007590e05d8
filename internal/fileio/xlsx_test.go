package fileio

import (
	"testing"

	excelize "github.com/xuri/excelize/v2"
)

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	cells := [][]any{
		{"Part", "Color", "Quantity"},
		{"3001", 0, 4},
		{nil, nil, nil},
		{"3023", 71, 10},
	}
	for i, row := range cells {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	rows, err := ReadRows(buf, "inventory.XLSX")
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (blank row dropped)", len(rows))
	}
	if rows[2][0] != "3023" || rows[2][1] != "71" {
		t.Errorf("rows[2] = %v, want [3023 71 10]", rows[2])
	}
}
