package dataset

import (
	"fmt"
	"io"

	"scrolly/internal/series"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Series"

// WriteSeriesXLSX writes one series as a workbook that DecodeXLSX can read back.
func WriteSeriesXLSX(w io.Writer, level, metric string, s series.Series) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"level", "metric", "period_index", "value"}); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, p := range s {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{level, metric, p.PeriodIndex, p.Value}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "D", 16); err != nil {
		return err
	}
	return f.Write(w)
}
