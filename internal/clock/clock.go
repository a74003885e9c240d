// Package clock provides the system implementation of the injectable
// clock used for timestamps and countdown math.
package clock

import "time"

// System reads the real wall clock and a monotonic reference taken at
// construction time.
type System struct {
	epoch time.Time
}

// NewSystem creates a system clock.
func NewSystem() *System {
	return &System{epoch: time.Now()}
}

// Now returns the current local time with timezone offset, truncated
// to seconds so persisted timestamps stay second-precise.
func (s *System) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Monotonic returns the time elapsed since the clock was created. The
// underlying reading uses Go's monotonic clock, so wall-clock jumps do
// not affect countdowns.
func (s *System) Monotonic() time.Duration {
	return time.Since(s.epoch)
}
