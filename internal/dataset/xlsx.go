package dataset

import (
	"bytes"
	"fmt"

	"scrolly/internal/record"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads the first sheet of a workbook with the same header
// conventions as DecodeCSV.
func DecodeXLSX(data []byte) ([]record.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: workbook has no sheets")
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet %s: %w", sheets[0], err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("xlsx: missing header row")
	}
	header := headerIndex(grid[0])
	rows := make([]record.RawRecord, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		rows = append(rows, rowFromCells(header, cells))
	}
	return rows, nil
}
