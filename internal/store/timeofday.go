package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// It serializes as "15:04" in JSON and as an integer column in the
// database, which keeps it scannable through both pgx and lib/pq.
type TimeOfDay int

// ParseTimeOfDay parses a "15:04" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Hours returns the duration from midnight in fractional hours.
func (t TimeOfDay) Hours() float64 {
	return float64(t) / 60
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*t = TimeOfDay(v)
	case int32:
		*t = TimeOfDay(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	return nil
}

// Overlaps reports whether [start, end) and [otherStart, otherEnd)
// share any instant. Both ranges are half-open, so back-to-back slots
// (10:00-11:00 and 11:00-12:00) do not overlap.
func Overlaps(start, end, otherStart, otherEnd TimeOfDay) bool {
	return start < otherEnd && otherStart < end
}
