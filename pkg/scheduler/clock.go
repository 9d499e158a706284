package scheduler

import "time"

// Clock provides time for slice budgeting. Tests can inject a fake clock
// to make slicing deterministic.
type Clock interface {
	Now() time.Time
}

// systemClock uses wall time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock.
var SystemClock Clock = systemClock{}
