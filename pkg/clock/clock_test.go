package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorMinute(t *testing.T) {
	t.Run("Zeroes seconds and nanoseconds", func(t *testing.T) {
		in := time.Date(2025, 6, 1, 10, 30, 45, 123456789, time.UTC)
		out := FloorMinute(in)

		assert.Equal(t, 0, out.Second())
		assert.Equal(t, 0, out.Nanosecond())
	})

	t.Run("Converts to +05:30", func(t *testing.T) {
		in := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		out := FloorMinute(in)

		_, offset := out.Zone()
		assert.Equal(t, 5*3600+30*60, offset)
		assert.Equal(t, 15, out.Hour())
		assert.Equal(t, 30, out.Minute())
	})

	t.Run("Idempotent", func(t *testing.T) {
		in := time.Date(2025, 6, 1, 10, 30, 45, 0, time.UTC)
		once := FloorMinute(in)
		twice := FloorMinute(once)

		assert.True(t, once.Equal(twice))
	})
}

func TestFormatParseRoundTrip(t *testing.T) {
	in := time.Date(2025, 6, 1, 10, 30, 59, 999, time.UTC)
	s := Format(in)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, Format(parsed))
	assert.True(t, parsed.Equal(FloorMinute(in)))
}

func TestFormatSortsLexicographically(t *testing.T) {
	// Minute-floored strings in a single offset must sort in time order,
	// since the store compares them with <=.
	earlier := Format(time.Date(2025, 6, 1, 9, 59, 0, 0, ISTZone))
	later := Format(time.Date(2025, 6, 1, 10, 0, 0, 0, ISTZone))

	assert.Less(t, earlier, later)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-time")
	assert.Error(t, err)
}
