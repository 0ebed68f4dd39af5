package asset

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotLifecycle(t *testing.T) {
	var s Slot[string]

	assert.Equal(t, NotLoaded, s.State())
	_, ok := s.Get()
	assert.False(t, ok)
	assert.NoError(t, s.Err())

	require.True(t, s.Begin())
	assert.Equal(t, Loading, s.State())
	assert.False(t, s.Begin(), "second load must not start while one is in flight")

	s.Resolve("mesh")
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "mesh", v)
	assert.Equal(t, Loaded, s.State())
}

func TestSlotFailure(t *testing.T) {
	var s Slot[int]
	boom := errors.New("boom")

	s.Begin()
	s.Fail(boom)

	assert.Equal(t, Failed, s.State())
	assert.Equal(t, boom, s.Err())
	_, ok := s.Get()
	assert.False(t, ok)

	// A retry clears the error and can succeed.
	require.True(t, s.Begin())
	assert.Equal(t, Loading, s.State())
	assert.NoError(t, s.Err())
	s.Resolve(7)
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestSlotReloadKeepsValueUntilResolved(t *testing.T) {
	var s Slot[int]
	s.Resolve(1)

	require.True(t, s.Begin())
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	s.Resolve(2)
	v, _ = s.Get()
	assert.Equal(t, 2, v)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestLoaderAppliesResultsOnlyOnDrain(t *testing.T) {
	l := NewLoader[int](2, nil)
	var s Slot[int]
	release := make(chan struct{})

	require.True(t, l.Submit("answer", &s, func() (int, error) {
		<-release
		return 42, nil
	}))
	assert.Equal(t, Loading, s.State())
	assert.Equal(t, 0, l.Drain(nil))

	close(release)
	var got []Result[int]
	n := l.Wait(5*time.Second, func(r Result[int]) { got = append(got, r) })

	require.Equal(t, 1, n)
	assert.Equal(t, "answer", got[0].Name)
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 0, l.Pending())
}

func TestLoaderReportsFailuresAndPanics(t *testing.T) {
	l := NewLoader[int](1, nil)
	var failing, panicking Slot[int]

	l.Submit("failing", &failing, func() (int, error) { return 0, errors.New("missing file") })
	l.Submit("panicking", &panicking, func() (int, error) { panic("bad data") })

	deadline := time.Now().Add(5 * time.Second)
	for l.Pending() > 0 && time.Now().Before(deadline) {
		l.Wait(100*time.Millisecond, nil)
	}

	assert.Equal(t, Failed, failing.State())
	assert.EqualError(t, failing.Err(), "missing file")
	assert.Equal(t, Failed, panicking.State())
	assert.Contains(t, panicking.Err().Error(), "bad data")
}
