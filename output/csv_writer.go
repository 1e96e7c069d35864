package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"econsync/syncer"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, results []syncer.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(resultRow(result)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv report: %w", err)
	}

	return nil
}
