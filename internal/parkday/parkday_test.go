package parkday

import (
	"testing"
	"time"
)

func TestTodayUsesParkTimezone(t *testing.T) {
	c, err := New("America/New_York")
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	// 2026-07-04 03:30 UTC is still 2026-07-03 in Orlando.
	c.now = func() time.Time {
		return time.Date(2026, 7, 4, 3, 30, 0, 0, time.UTC)
	}
	if got := c.Today(); got != "2026-07-03" {
		t.Errorf("today = %q, want %q", got, "2026-07-03")
	}

	// By 05:00 UTC the park date has rolled over.
	c.now = func() time.Time {
		return time.Date(2026, 7, 4, 5, 0, 0, 0, time.UTC)
	}
	if got := c.Today(); got != "2026-07-04" {
		t.Errorf("today after rollover = %q, want %q", got, "2026-07-04")
	}
}

func TestDateOf(t *testing.T) {
	c, err := New("America/New_York")
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	utcMidnight := time.Date(2026, 3, 10, 0, 15, 0, 0, time.UTC)
	if got := c.DateOf(utcMidnight); got != "2026-03-09" {
		t.Errorf("date of %v = %q, want %q", utcMidnight, got, "2026-03-09")
	}
}

func TestParseDate(t *testing.T) {
	c, err := New("America/New_York")
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	midnight, err := c.ParseDate("2026-07-04")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if midnight.Hour() != 0 || midnight.Location() != c.Location() {
		t.Errorf("parsed date = %v, want park-local midnight", midnight)
	}

	if _, err := c.ParseDate("07/04/2026"); err == nil {
		t.Error("expected error for malformed date key")
	}
}

func TestBefore(t *testing.T) {
	if !Before("2026-07-03", "2026-07-04") {
		t.Error("2026-07-03 should sort before 2026-07-04")
	}
	if Before("2026-07-04", "2026-07-04") {
		t.Error("equal dates are not before each other")
	}
	if Before("2026-12-01", "2026-02-01") {
		t.Error("december is not before february")
	}
}

func TestNewFixed(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixed := time.Date(2026, 7, 4, 13, 39, 0, 0, loc)
	c := NewFixed(fixed)
	if !c.Now().Equal(fixed) {
		t.Errorf("now = %v, want %v", c.Now(), fixed)
	}
	if c.Today() != "2026-07-04" {
		t.Errorf("today = %q, want %q", c.Today(), "2026-07-04")
	}
}
