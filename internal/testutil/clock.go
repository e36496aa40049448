package testutil

import "time"

// Clock is a manually advanced day clock for engine tests.
type Clock struct {
	current time.Time
}

// NewClock returns a clock at 2024-01-01 UTC.
func NewClock() *Clock {
	return &Clock{current: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current time. Its method value satisfies adr.Clock.
func (c *Clock) Now() time.Time {
	return c.current
}

// Today returns the current date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.current.Format(time.DateOnly)
}

// AdvanceDays moves the clock forward by n days.
func (c *Clock) AdvanceDays(n int) {
	c.current = c.current.AddDate(0, 0, n)
}
