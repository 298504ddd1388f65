package services

import (
	"time"

	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
)

// Ensure SystemClock implements the interface.
var _ driven.Clock = (*SystemClock)(nil)

// SystemClock is the production clock, pinned to a timezone so that
// "today" means the service-local calendar date regardless of host TZ.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a clock in the given timezone.
// A nil location falls back to the host's local zone.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

// Now returns the current time in the configured zone.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	// Instant is the time reported by Now.
	Instant time.Time
}

// Now returns the fixed instant.
func (c *FixedClock) Now() time.Time {
	return c.Instant
}
