package dispatch

import "time"

// Clock provides current time. Injectable so offer expiry is testable
// without waiting out real windows.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock.
type RealClock struct{}

// Now returns current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }
