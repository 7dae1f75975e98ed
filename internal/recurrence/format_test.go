package recurrence

import (
	"testing"
	"time"
)

func TestFormatAlarmTimeSplit(t *testing.T) {
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) // Wednesday

	cases := []struct {
		name     string
		at       time.Time
		wantDay  string
		wantTime string
	}{
		{"today", time.Date(2026, 1, 7, 21, 30, 0, 0, time.UTC), "Today", "9:30 PM"},
		{"tomorrow", time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC), "Tomorrow", "7:00 AM"},
		{"later weekday", time.Date(2026, 1, 12, 6, 45, 0, 0, time.UTC), "Mon", "6:45 AM"},
		{"midnight", time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), "Tomorrow", "12:00 AM"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatAlarmTimeSplit(tc.at, now, time.UTC)
			if got.Day != tc.wantDay {
				t.Errorf("day = %q, want %q", got.Day, tc.wantDay)
			}
			if got.Time != tc.wantTime {
				t.Errorf("time = %q, want %q", got.Time, tc.wantTime)
			}
		})
	}
}

func TestFormatAlarmTimeSplit_TimezoneAwareDayBoundary(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	// 23:00 NY on Jan 7; an alarm at 04:00 UTC Jan 8 is still 23:00 Jan 7
	// in New York, so the label must be Today, not Tomorrow.
	now := time.Date(2026, 1, 8, 3, 0, 0, 0, time.UTC)
	at := time.Date(2026, 1, 8, 4, 0, 0, 0, time.UTC)

	got := FormatAlarmTimeSplit(at, now, ny)
	if got.Day != "Today" {
		t.Errorf("day = %q, want Today (NY calendar day)", got.Day)
	}
	if got.Time != "11:00 PM" {
		t.Errorf("time = %q, want 11:00 PM", got.Time)
	}
}

func TestFormatAlarmTime(t *testing.T) {
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)
	at := time.Date(2026, 1, 8, 7, 30, 0, 0, time.UTC)
	if got := FormatAlarmTime(at, now, time.UTC); got != "Tomorrow at 7:30 AM" {
		t.Errorf("FormatAlarmTime = %q", got)
	}
}
