package dates

import (
	"strings"
	"testing"
	"time"
)

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-01-01", 0, "2024-01-01"},
		{"2024-01-01", 3, "2024-01-04"},
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-03-09", 2, "2024-03-11"}, // spans a US DST change
		{"garbage", 1, ""},
	}
	for _, tt := range tests {
		if got := AddDays(tt.date, tt.n); got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	n, ok := DaysBetween("2024-01-01", "2024-01-07")
	if !ok || n != 6 {
		t.Errorf("DaysBetween = %d, %v; want 6, true", n, ok)
	}
	n, ok = DaysBetween("2024-01-07", "2024-01-01")
	if !ok || n != -6 {
		t.Errorf("DaysBetween reversed = %d, %v; want -6, true", n, ok)
	}
	if _, ok := DaysBetween("2024-01-01", "nope"); ok {
		t.Error("expected malformed input to fail")
	}
}

func TestWeekday(t *testing.T) {
	wd, ok := Weekday("2024-01-01")
	if !ok || wd != time.Monday {
		t.Errorf("Weekday(2024-01-01) = %v, want Monday", wd)
	}
	if DayName("2024-01-06") != "Saturday" {
		t.Errorf("DayName(2024-01-06) = %q", DayName("2024-01-06"))
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := map[string]int{
		"2024-02-10": 29,
		"2023-02-10": 28,
		"2024-04-30": 30,
		"2024-12-01": 31,
	}
	for date, want := range tests {
		if got := DaysInMonth(date); got != want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", date, got, want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	first, last := WeekBounds("2024-01-03", time.Sunday)
	if first != "2023-12-31" || last != "2024-01-06" {
		t.Errorf("sunday week = %s..%s", first, last)
	}
	first, last = WeekBounds("2024-01-03", time.Monday)
	if first != "2024-01-01" || last != "2024-01-07" {
		t.Errorf("monday week = %s..%s", first, last)
	}
	// A Sunday with a Monday week start belongs to the previous week.
	first, _ = WeekBounds("2024-01-07", time.Monday)
	if first != "2024-01-01" {
		t.Errorf("monday week of sunday starts %s", first)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds("2024-02-14")
	if first != "2024-02-01" || last != "2024-02-29" {
		t.Errorf("MonthBounds = %s..%s", first, last)
	}
}

func TestRange(t *testing.T) {
	got := Range("2024-01-30", "2024-02-02")
	if strings.Join(got, ",") != "2024-01-30,2024-01-31,2024-02-01,2024-02-02" {
		t.Errorf("Range = %v", got)
	}
	if len(Range("2024-02-02", "2024-01-30")) != 0 {
		t.Error("expected empty range for reversed bounds")
	}
}

func TestToday_UsesLocalZone(t *testing.T) {
	old := time.Local
	t.Cleanup(func() { time.Local = old })

	time.Local = time.FixedZone("UTC+10", 10*60*60)
	// 20:00 UTC on Jan 1 is already Jan 2 at UTC+10.
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := Today(now); got != "2024-01-02" {
		t.Errorf("Today = %s, want 2024-01-02", got)
	}
}

func TestResolve(t *testing.T) {
	old := time.Local
	t.Cleanup(func() { time.Local = old })
	time.Local = time.UTC

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2024-05-10", false},
		{"today", "2024-05-10", false},
		{"Yesterday", "2024-05-09", false},
		{"tomorrow", "2024-05-11", false},
		{"+3", "2024-05-13", false},
		{"-10", "2024-04-30", false},
		{"2024-12-25", "2024-12-25", false},
		{"12/25/2024", "", true},
		{"+x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Resolve(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWeekStart(t *testing.T) {
	if wd, err := ParseWeekStart("Monday"); err != nil || wd != time.Monday {
		t.Errorf("ParseWeekStart(Monday) = %v, %v", wd, err)
	}
	if wd, err := ParseWeekStart(""); err != nil || wd != time.Sunday {
		t.Errorf("ParseWeekStart(\"\") = %v, %v", wd, err)
	}
	if _, err := ParseWeekStart("friday"); err == nil {
		t.Error("expected error for friday")
	}
}
