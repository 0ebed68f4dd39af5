package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClockIgnoresFrameTime(t *testing.T) {
	c := NewClock(ClockModeFixed)

	c.Advance(time.Second)
	c.Advance(0)
	got := c.Advance(-time.Second)
	assert.InDelta(t, 3*DefaultStep, got, 1e-6)
	assert.Equal(t, got, c.Elapsed())

	c.Reset()
	assert.Zero(t, c.Elapsed())
}

func TestWallclockMatchesFixedStepAtSixtyHertz(t *testing.T) {
	wall := NewClock(ClockModeWallclock)
	fixed := NewClock(ClockModeFixed)

	frame := time.Second / 60
	for range 60 {
		wall.Advance(frame)
		fixed.Advance(frame)
	}
	assert.InDelta(t, fixed.Elapsed(), wall.Elapsed(), 1e-3)
	assert.InDelta(t, DefaultRate, wall.Elapsed(), 1e-3)
}

func TestWallclockIgnoresNegativeFrameTime(t *testing.T) {
	c := NewClock(ClockModeWallclock)
	assert.Zero(t, c.Advance(-time.Second))
}

func TestClockOptionsIgnoreNonPositiveValues(t *testing.T) {
	c := NewClock(ClockModeFixed, WithStep(0), WithRate(-1))
	assert.InDelta(t, DefaultStep, c.Advance(0), 1e-6)

	c = NewClock(ClockModeFixed, WithStep(0.5))
	assert.InDelta(t, 0.5, c.Advance(0), 1e-6)

	c = NewClock(ClockModeWallclock, WithRate(2))
	assert.InDelta(t, 1.0, c.Advance(500*time.Millisecond), 1e-6)
}

func TestParseClockMode(t *testing.T) {
	for _, mode := range []ClockMode{ClockModeWallclock, ClockModeFixed} {
		got, err := ParseClockMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	got, err := ParseClockMode(" Wall ")
	require.NoError(t, err)
	assert.Equal(t, ClockModeWallclock, got)

	_, err = ParseClockMode("realtime")
	assert.Error(t, err)
	assert.Equal(t, "unknown", ClockMode(5).String())
}
