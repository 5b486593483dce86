// Package parkday normalizes wall-clock time into the park's local
// calendar. Every date key in the system is a park-local YYYY-MM-DD
// string; using UTC dates would mis-fire reminders near midnight.
package parkday

import (
	"fmt"
	"time"
)

// DateFormat is the canonical date-key layout.
const DateFormat = "2006-01-02"

// Clock resolves "now" in the park's timezone. The zero clock is not
// usable; construct with New.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Clock for the named IANA timezone (e.g. "America/New_York").
func New(tzName string) (*Clock, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load park timezone %q: %w", tzName, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed creates a Clock whose Now always returns t, for tests.
func NewFixed(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Location returns the park's timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the park's timezone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current park-local date key.
func (c *Clock) Today() string {
	return c.Now().Format(DateFormat)
}

// DateOf returns the park-local date key for an instant.
func (c *Clock) DateOf(t time.Time) string {
	return t.In(c.loc).Format(DateFormat)
}

// ParseDate validates a YYYY-MM-DD date key and returns park-local midnight.
func (c *Clock) ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// Before reports whether date key a sorts strictly before b. Date keys are
// zero-padded, so lexicographic order is chronological order.
func Before(a, b string) bool {
	return a < b
}
