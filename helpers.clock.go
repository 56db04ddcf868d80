package main

import (
	"time"
)

// compile time check that Clock satisfies Clocker.
var _ Clocker = (*Clock)(nil)

// Clocker abstracts wall time retrieval. Book timestamps are read
// through it so tests can freeze the clock.
type Clocker interface {
	Now() time.Time
}

// Clock reads real time in a fixed location.
type Clock struct {
	tz *time.Location
}

// NewClock builds a clock on UTC when running in production
// and on host local time otherwise.
func NewClock(isProd bool) *Clock {
	if isProd {
		return &Clock{time.UTC}
	}
	return &Clock{time.Local}
}

// Now provides current clock time.
func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}
