package ports

import "time"

// Scheduler abstracts one-shot delayed callbacks so phase-transition timers
// can be driven by virtual time in tests.
type Scheduler interface {
	// Schedule runs fn after d. The returned cancel function stops the timer
	// if it has not fired yet; calling it afterwards is a no-op.
	Schedule(d time.Duration, fn func()) (cancel func())
}
