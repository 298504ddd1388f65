package driven

import "time"

// Clock supplies the current wall-clock time in the service timezone.
// Injecting it keeps "today" semantics deterministic under test; core
// code never calls time.Now directly.
type Clock interface {
	// Now returns the current local time.
	Now() time.Time
}
