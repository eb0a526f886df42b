package session

import "time"

// Clock supplies the current time.
//
// Implementations should return instants that carry a monotonic reading
// (as time.Now does) so that latency measured within one process is immune
// to wall-clock adjustments. Test clocks may omit it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
