package domain

import "github.com/jonboulle/clockwork"

// clock stamps generated reports. Tests pin it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the report clock. Pass nil to restore the wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
