package shared

import "time"

// Clock returns the current instant. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock reads the wall clock in loc, or in UTC when loc is nil.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
