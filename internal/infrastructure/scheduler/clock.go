package scheduler

import "time"

// Clock abstracts wall-clock reads so tick logic can be tested against
// fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
