package timeentry

import (
	"testing"
	"time"
)

func TestFormatHours(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hours float64
		want  string
	}{
		{hours: 1.5, want: "1,5"},
		{hours: 0.5, want: "0,5"},
		{hours: 0, want: "0,0"},
		{hours: 8, want: "8,0"},
		{hours: 0.25, want: "0,25"},
	}

	for _, tc := range cases {
		if got := FormatHours(tc.hours); got != tc.want {
			t.Fatalf("FormatHours(%v): expected %q, got %q", tc.hours, tc.want, got)
		}
	}
}

func TestEntryFields(t *testing.T) {
	t.Parallel()

	entry := Entry{
		Date:        time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		ProjectID:   123,
		ActivityID:  ID(2),
		Description: "Calls",
		Hours:       1.5,
	}

	if got := entry.DateField(); got != "2024-01-01" {
		t.Fatalf("unexpected date field: %q", got)
	}
	if got := entry.HoursField(); got != "1,5" {
		t.Fatalf("unexpected hours field: %q", got)
	}
	if got := entry.ActivityID.String(); got != "2" {
		t.Fatalf("unexpected activity field: %q", got)
	}
}

func TestOptionalID_AbsentSerializesBlank(t *testing.T) {
	t.Parallel()

	if got := (OptionalID{}).String(); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := MaybeID(0); got.Valid {
		t.Fatalf("expected absent id for zero")
	}
	if got := MaybeID(-4); got.Valid {
		t.Fatalf("expected absent id for negative value")
	}
	if got := MaybeID(7); !got.Valid || got.Value != 7 {
		t.Fatalf("expected valid id 7, got %+v", got)
	}
}
