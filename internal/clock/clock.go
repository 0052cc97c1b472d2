package clock

import (
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/fx"
)

// Clock abstracts wall time so calculations can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// New returns the process clock.
func New() Clock {
	return systemClock{}
}

// Today returns the calendar date of c in UTC.
func Today(c Clock) civil.Date {
	if c == nil {
		return civil.DateOf(time.Now().UTC())
	}
	return civil.DateOf(c.Now().UTC())
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
