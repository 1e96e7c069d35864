package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"econsync/syncer"
	"econsync/timeentry"
)

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat(" CSV "); err != nil {
		t.Fatalf("csv must be supported: %v", err)
	}
	if _, err := WriterForFormat("xlsx"); err != nil {
		t.Fatalf("xlsx must be supported: %v", err)
	}
	if _, err := WriterForFormat("excel"); err != nil {
		t.Fatalf("excel must be supported: %v", err)
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCSVWriter_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.csv")
	results := []syncer.Result{
		{
			Source: "calendar",
			Entry: timeentry.Entry{
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
				ProjectID:   123,
				ActivityID:  timeentry.ID(2),
				Description: "Calls",
				Hours:       0.5,
			},
			Status: syncer.StatusRecorded,
		},
		{
			Source: "tasks",
			Status: syncer.StatusFailed,
			Reason: "task AB-3 is missing an economic project id",
		},
	}

	writer := &CSVWriter{}
	if err := writer.Write(path, results); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(rows))
	}
	if rows[0][0] != "Source" || rows[0][5] != "Hours" {
		t.Fatalf("unexpected headers: %v", rows[0])
	}
	if rows[1][1] != "2024-03-01" || rows[1][5] != "0,5" || rows[1][6] != "recorded" {
		t.Fatalf("unexpected entry row: %v", rows[1])
	}
	if rows[2][1] != "" || rows[2][6] != "failed" || rows[2][7] == "" {
		t.Fatalf("unexpected failure row: %v", rows[2])
	}
}

func TestExcelWriter_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.xlsx")
	writer := &ExcelWriter{}
	err := writer.Write(path, []syncer.Result{{
		Source: "calendar",
		Entry: timeentry.Entry{
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
			ProjectID:   123,
			ActivityID:  timeentry.ID(2),
			Description: "Calls",
			Hours:       1.5,
		},
		Status: syncer.StatusSimulated,
	}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}
