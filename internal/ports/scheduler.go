package ports

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running again. Stopping a timer whose
	// callback is already queued must also suppress that queued run.
	// Stop is idempotent.
	Stop()
}

// Scheduler runs callbacks in the future. All callbacks of one scheduler run
// on a single executor, one at a time.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer
}
