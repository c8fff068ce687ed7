package application

import "time"

// Clock interface supaya durasi analisis gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Since is time.Since against c; a nil Clock falls back to the wall clock.
func Since(c Clock, start time.Time) time.Duration {
	if c == nil {
		return time.Since(start)
	}
	return c.Now().Sub(start)
}
