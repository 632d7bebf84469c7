package domain

import (
	"errors"
	"testing"
	"time"
)

func day(t *testing.T, s string, loc *time.Location) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateFormat, s, loc)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestNewDateRangeRejectsInverted(t *testing.T) {
	_, err := NewDateRange(day(t, "2024-01-03", time.UTC), day(t, "2024-01-01", time.UTC), time.UTC)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestNewDateRangeSingleDay(t *testing.T) {
	d := day(t, "2024-01-01", time.UTC)
	rng, err := NewDateRange(d, d, time.UTC)
	if err != nil {
		t.Fatalf("single-day range must be valid: %v", err)
	}
	dates := rng.Dates()
	if len(dates) != 1 || dates[0] != "2024-01-01" {
		t.Fatalf("expected one date, got %v", dates)
	}
}

func TestDateRangeBounds(t *testing.T) {
	rng, err := NewDateRange(day(t, "2024-01-01", time.UTC), day(t, "2024-01-03", time.UTC), time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	lower := rng.LowerBound()
	if !lower.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected lower bound %v", lower)
	}
	upper := rng.UpperBound()
	if !upper.Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected upper bound %v", upper)
	}

	// An interval ending at 23:59:59 on the last day is inside; one ending
	// exactly at midnight of the next day is not.
	inside := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)
	if !inside.Before(upper) {
		t.Error("23:59:59 on the end date must be inside the range")
	}
	midnight := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	if midnight.Before(upper) {
		t.Error("midnight of the following day must be outside the range")
	}
}

func TestDatesSpansMonthBoundary(t *testing.T) {
	rng, err := NewDateRange(day(t, "2024-01-30", time.UTC), day(t, "2024-02-02", time.UTC), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	got := rng.Dates()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("date %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDayUsesReportTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	rng, err := NewDateRange(day(t, "2024-06-01", berlin), day(t, "2024-06-02", berlin), berlin)
	if err != nil {
		t.Fatal(err)
	}

	// 22:30 UTC is 00:30 the next day in Berlin summer time (UTC+2).
	instant := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)
	if got := rng.Day(instant); got != "2024-06-02" {
		t.Fatalf("expected 2024-06-02, got %s", got)
	}
}

func TestDurationSec(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	iv := TimeInterval{StartAt: start, EndAt: start.Add(5 * time.Minute)}
	if got := iv.DurationSec(); got != 300 {
		t.Errorf("expected 300, got %d", got)
	}

	inverted := TimeInterval{StartAt: start, EndAt: start.Add(-time.Minute)}
	if got := inverted.DurationSec(); got != 0 {
		t.Errorf("inverted interval must clamp to 0, got %d", got)
	}

	zero := TimeInterval{StartAt: start, EndAt: start}
	if got := zero.DurationSec(); got != 0 {
		t.Errorf("zero-length interval must be 0, got %d", got)
	}
}

func TestDeleted(t *testing.T) {
	now := time.Now()
	if (TimeInterval{}).Deleted() {
		t.Error("interval without DeletedAt must not report deleted")
	}
	if !(TimeInterval{DeletedAt: &now}).Deleted() {
		t.Error("interval with DeletedAt must report deleted")
	}
}
