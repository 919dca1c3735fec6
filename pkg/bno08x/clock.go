package bno08x

import "time"

// Clock is the time source used for all waits.
type Clock interface {
	// Now returns the current monotonic time.
	Now() time.Time
	// Sleep pauses for d.
	Sleep(d time.Duration)
}

// RealClock implements Clock using the time package.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep implements Clock.
func (RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
