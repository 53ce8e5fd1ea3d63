// Package clock injects time into services so intent expiry and order
// numbering can be tested against a fixed instant.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// NewSystem returns a clock backed by time.Now in UTC.
func NewSystem() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// NewFixed returns a clock pinned to a single instant.
func NewFixed(t time.Time) Clock {
	at := t.UTC()
	return Func(func() time.Time { return at })
}
