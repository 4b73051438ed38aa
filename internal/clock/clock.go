// Package clock abstracts wall-clock reads so date-boundary rules
// ("date must not be in the past") stay deterministic in tests.
// Production code injects Real(); tests inject a Fake pinned to a
// known instant.
package clock

import "time"

type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns the current date truncated to midnight UTC.
	Today() time.Time
}

type realClock struct{}

// Real returns a Clock backed by the system clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Today() time.Time {
	return Midnight(time.Now())
}

// Midnight truncates t to its date, midnight UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fake is a Clock whose time only moves when the test advances it.
type Fake struct {
	now time.Time
}

// NewFake returns a Fake pinned to t.
func NewFake(t time.Time) *Fake { return &Fake{now: t} }

func (f *Fake) Now() time.Time { return f.now }

func (f *Fake) Today() time.Time { return Midnight(f.now) }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) { f.now = f.now.Add(d) }

// Set pins the fake clock to t.
func (f *Fake) Set(t time.Time) { f.now = t }
