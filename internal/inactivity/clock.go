// Package inactivity implements the dead-man's-switch core: the periodic
// evaluator that measures user silence, escalates warnings, and performs the
// one-time vault disclosure when the grace window expires.
package inactivity

import "time"

// Clock supplies the current instant. Injected so the escalation schedule
// can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
