// Package timeutil provides a testable source of wall-clock time.
package timeutil

import (
	"sync"
	"time"
)

// Clock provides the current time. Production code uses RealClock; tests
// pin the start of the simulated timeline with a MockClock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// UnixMilli returns the clock's current time in milliseconds since the epoch.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}

// MockClock is a manually controlled clock for testing.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// NewMockClockMillis creates a MockClock at the given epoch milliseconds.
func NewMockClockMillis(ms int64) *MockClock {
	return NewMockClock(time.UnixMilli(ms))
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
