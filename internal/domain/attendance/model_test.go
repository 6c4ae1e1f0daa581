package attendance_test

import (
	"testing"
	"time"

	"arff/internal/domain/attendance"
)

func TestRecordValidate(t *testing.T) {
	r := attendance.Record{ClassID: "c", FirefighterID: "f", Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)}
	if err := r.Validate(); err != nil {
		t.Errorf("valid record: %v", err)
	}
	r.Date = time.Time{}
	if err := r.Validate(); err == nil {
		t.Error("expected error for missing date")
	}
}

func TestPercentage(t *testing.T) {
	d := func(n int) time.Time { return time.Date(2025, 3, n, 0, 0, 0, 0, time.UTC) }
	records := []attendance.Record{
		{Date: d(3), Present: true},
		{Date: d(4), Present: true},
		{Date: d(4), Present: true},
		{Date: d(5), Present: false},
		{Date: d(6), Present: true},
	}
	tests := []struct {
		name string
		days int
		want float64
	}{
		{"five day class", 5, 60},
		{"three day class", 3, 100},
		{"no days", 0, 0},
	}
	for _, tt := range tests {
		if got := attendance.Percentage(records, tt.days); got != tt.want {
			t.Errorf("%s: Percentage = %v, want %v", tt.name, got, tt.want)
		}
	}
}
