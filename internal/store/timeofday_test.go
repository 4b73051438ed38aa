package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), got)
	assert.Equal(t, "09:30", got.String())
	assert.Equal(t, 9.5, got.Hours())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("9am")
	assert.Error(t, err)
}

func TestTimeOfDayJSON(t *testing.T) {
	tod, err := ParseTimeOfDay("18:00")
	require.NoError(t, err)

	b, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.Equal(t, `"18:00"`, string(b))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tod, back)
}

func TestOverlaps(t *testing.T) {
	at := func(s string) TimeOfDay {
		tod, err := ParseTimeOfDay(s)
		require.NoError(t, err)
		return tod
	}

	// Back-to-back slots share only the boundary instant, which the
	// half-open ranges exclude.
	assert.False(t, Overlaps(at("10:00"), at("11:00"), at("11:00"), at("12:00")))
	assert.False(t, Overlaps(at("11:00"), at("12:00"), at("10:00"), at("11:00")))

	assert.True(t, Overlaps(at("10:00"), at("12:00"), at("11:00"), at("13:00")))
	assert.True(t, Overlaps(at("11:00"), at("13:00"), at("10:00"), at("12:00")))
	assert.True(t, Overlaps(at("10:00"), at("14:00"), at("11:00"), at("12:00")))
	assert.True(t, Overlaps(at("11:00"), at("12:00"), at("10:00"), at("14:00")))
	assert.True(t, Overlaps(at("10:00"), at("11:00"), at("10:00"), at("11:00")))

	assert.False(t, Overlaps(at("08:00"), at("09:00"), at("12:00"), at("13:00")))
}
