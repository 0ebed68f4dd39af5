package renderer

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultStep is the per-frame increment of a fixed clock.
	DefaultStep float32 = 0.01
	// DefaultRate scales wall-clock seconds so a 60 Hz display advances by DefaultStep per frame.
	DefaultRate float32 = 0.6
)

// ClockMode selects how a Clock advances.
type ClockMode int

const (
	// ClockModeWallclock advances by elapsed seconds times the rate.
	ClockModeWallclock ClockMode = iota
	// ClockModeFixed advances by the step on every frame regardless of elapsed time.
	ClockModeFixed
)

// String returns the mode name used in configuration files.
func (m ClockMode) String() string {
	switch m {
	case ClockModeWallclock:
		return "wallclock"
	case ClockModeFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseClockMode maps a mode name onto a ClockMode.
//
// Parameters:
//   - name: "wallclock" or "fixed", case insensitive
//
// Returns:
//   - ClockMode: the mode
//   - error: an error if the name is not recognised
func ParseClockMode(name string) (ClockMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wallclock", "wall":
		return ClockModeWallclock, nil
	case "fixed":
		return ClockModeFixed, nil
	default:
		return 0, fmt.Errorf("unknown clock mode %q", name)
	}
}

type clock struct {
	mu *sync.Mutex

	mode    ClockMode
	step    float32
	rate    float32
	elapsed float32
}

// Clock produces the elapsed-time uniform of the composite program.
type Clock interface {
	// Mode returns how the clock advances.
	//
	// Returns:
	//   - ClockMode: the mode
	Mode() ClockMode

	// Advance moves the clock forward by one frame.
	//
	// Parameters:
	//   - dt: wall-clock time since the previous frame, ignored in fixed mode.
	//     Negative durations count as zero.
	//
	// Returns:
	//   - float32: the new elapsed time
	Advance(dt time.Duration) float32

	// Elapsed returns the current elapsed time without advancing.
	//
	// Returns:
	//   - float32: the elapsed time
	Elapsed() float32

	// Reset sets the elapsed time back to zero.
	Reset()
}

var _ Clock = &clock{}

// NewClock creates a Clock starting at zero.
//
// Parameters:
//   - mode: how the clock advances
//   - options: a variadic list of ClockBuilderOption functions
//
// Returns:
//   - Clock: the clock
func NewClock(mode ClockMode, options ...ClockBuilderOption) Clock {
	c := &clock{
		mu:   &sync.Mutex{},
		mode: mode,
		step: DefaultStep,
		rate: DefaultRate,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *clock) Mode() ClockMode {
	return c.mode
}

func (c *clock) Advance(dt time.Duration) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ClockModeFixed:
		c.elapsed += c.step
	default:
		c.elapsed += float32(max(dt, 0).Seconds()) * c.rate
	}
	return c.elapsed
}

func (c *clock) Elapsed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

func (c *clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed = 0
}
