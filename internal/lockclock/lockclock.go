// Package lockclock decides whether a match still accepts wagers. It is a pure
// function of the current time, the match start time and a configured lock
// window; it never touches storage.
package lockclock

import "time"

// DefaultWindow is how long before a match starts that entries close.
const DefaultWindow = 5 * time.Minute

// Clock holds the configured lock window.
type Clock struct {
	window time.Duration
}

// New creates a Clock. A non-positive window falls back to DefaultWindow.
func New(window time.Duration) Clock {
	if window <= 0 {
		window = DefaultWindow
	}
	return Clock{window: window}
}

// Window returns the configured lock window.
func (c Clock) Window() time.Duration { return c.window }

// Locked reports whether a match starting at startsAt is closed for new wagers
// at time now. A match locks at exactly startsAt minus the window, inclusive.
func (c Clock) Locked(now, startsAt time.Time) bool {
	return !now.Before(startsAt.Add(-c.window))
}

// LocksAt returns the instant the match locks.
func (c Clock) LocksAt(startsAt time.Time) time.Time {
	return startsAt.Add(-c.window)
}
