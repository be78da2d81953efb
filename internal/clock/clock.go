// Package clock lets the engines read "now" from an injected source instead of
// the system clock.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock in the given location (time.Local when nil).
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a plain function.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }
