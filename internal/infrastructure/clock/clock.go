// Package clock provides the time sources the budget core is given.
package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// System reads wall-clock time in a configured location.
type System struct {
	loc       *time.Location
	weekStart time.Weekday
}

// NewSystem creates a system clock. weekStart is the first day of the
// budgeting week.
func NewSystem(loc *time.Location, weekStart time.Weekday) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc, weekStart: weekStart}
}

// Now returns the current time.
func (c *System) Now() time.Time {
	return time.Now().In(c.loc)
}

// DaysRemainingInWeek counts today and the days left until the week ends.
func (c *System) DaysRemainingInWeek() int {
	return DaysRemaining(c.Now().Weekday(), c.weekStart)
}

// DaysRemaining returns 7 on the first day of the week and 1 on the last.
func DaysRemaining(today, weekStart time.Weekday) int {
	elapsed := (int(today) - int(weekStart) + 7) % 7
	return 7 - elapsed
}

// ParseWeekday parses a weekday name such as "monday".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	mu        sync.Mutex
	now       time.Time
	weekStart time.Weekday
}

// NewFixed creates a clock frozen at now with weeks starting on Monday.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now, weekStart: time.Monday}
}

// Now returns the frozen time.
func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// DaysRemainingInWeek derives the remaining days from the frozen time.
func (c *Fixed) DaysRemainingInWeek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DaysRemaining(c.now.Weekday(), c.weekStart)
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
