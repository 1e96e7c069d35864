package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"econsync/syncer"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, results []syncer.Result) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, result := range results {
		row := i + 2
		for col, value := range resultRow(result) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel report %s: %w", path, err)
	}

	return nil
}
