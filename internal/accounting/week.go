package accounting

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedDate = errors.New("malformed order date")

// layouts accepted for order dates, tried in order
var dateLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006, 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOrderDate accepts DD.MM.YYYY dates (optionally with a time) and ISO
// dates. Zoned timestamps are converted to loc, bare ones are read in loc.
func ParseOrderDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// WeekKey identifies an ISO week by the calendar date of its Monday.
type WeekKey struct {
	Year  int
	Month time.Month
	Day   int
}

const weekKeyLayout = "2006-01-02"

// WeekKeyOf returns the week t falls in, judged in t's own location.
func WeekKeyOf(t time.Time) WeekKey {
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	return WeekKey{Year: monday.Year(), Month: monday.Month(), Day: monday.Day()}
}

// ParseWeekKey reads a YYYY-MM-DD date and returns the week containing it.
func ParseWeekKey(s string) (WeekKey, error) {
	t, err := time.Parse(weekKeyLayout, strings.TrimSpace(s))
	if err != nil {
		return WeekKey{}, fmt.Errorf("parse week key %q: %w", s, err)
	}
	return WeekKeyOf(t), nil
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

func (k WeekKey) IsZero() bool { return k == WeekKey{} }

// Start is Monday 00:00:00 in loc.
func (k WeekKey) Start(loc *time.Location) time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, orLocal(loc))
}

// End is Sunday 23:59:59.999 in loc.
func (k WeekKey) End(loc *time.Location) time.Time {
	return endOfDay(k, 6, loc)
}

// GraceDeadline is the end of the day graceDays after the week's Sunday.
func (k WeekKey) GraceDeadline(loc *time.Location, graceDays int) time.Time {
	return endOfDay(k, 6+graceDays, loc)
}

// Contains reports whether t lies within [Start, End].
func (k WeekKey) Contains(t time.Time, loc *time.Location) bool {
	return !t.Before(k.Start(loc)) && !t.After(k.End(loc))
}

func (k WeekKey) Next() WeekKey {
	return WeekKeyOf(time.Date(k.Year, k.Month, k.Day+7, 0, 0, 0, 0, time.UTC))
}

func (k WeekKey) Before(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

func (k WeekKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *WeekKey) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func endOfDay(k WeekKey, daysAfterMonday int, loc *time.Location) time.Time {
	next := time.Date(k.Year, k.Month, k.Day+daysAfterMonday+1, 0, 0, 0, 0, orLocal(loc))
	return next.Add(-time.Millisecond)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
