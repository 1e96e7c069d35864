package output

import (
	"fmt"
	"strings"

	"econsync/syncer"
)

type Writer interface {
	Write(path string, results []syncer.Result) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func resultRow(result syncer.Result) []string {
	// Failed items may carry no entry at all.
	date, hours := "", ""
	if !result.Entry.Date.IsZero() {
		date = result.Entry.DateField()
		hours = result.Entry.HoursField()
	}
	return []string{
		result.Source,
		date,
		itoaOrBlank(result.Entry.ProjectID),
		result.Entry.ActivityID.String(),
		result.Entry.Description,
		hours,
		string(result.Status),
		result.Reason,
	}
}

func itoaOrBlank(value int) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("%d", value)
}

var headers = []string{"Source", "Date", "Project", "Activity", "Description", "Hours", "Status", "Reason"}
