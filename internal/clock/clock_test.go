package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidnight(t *testing.T) {
	in := time.Date(2026, 3, 10, 23, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Midnight(in))

	// Non-UTC instants truncate to their UTC date.
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	late := time.Date(2026, 3, 11, 2, 0, 0, 0, kathmandu)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Midnight(late))
}

func TestFake(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), f.Today())

	f.Advance(20 * time.Hour)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), f.Today())

	f.Set(start)
	assert.Equal(t, start, f.Now())
}
