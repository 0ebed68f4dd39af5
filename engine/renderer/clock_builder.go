package renderer

// ClockBuilderOption is a functional option used to configure a Clock during construction.
type ClockBuilderOption func(*clock)

// WithStep sets the per-frame increment used in fixed mode.
//
// Parameters:
//   - step: the increment; non-positive values keep DefaultStep
//
// Returns:
//   - ClockBuilderOption: a function that sets the step
func WithStep(step float32) ClockBuilderOption {
	return func(c *clock) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithRate sets the multiplier applied to wall-clock seconds.
//
// Parameters:
//   - rate: the multiplier; non-positive values keep DefaultRate
//
// Returns:
//   - ClockBuilderOption: a function that sets the rate
func WithRate(rate float32) ClockBuilderOption {
	return func(c *clock) {
		if rate > 0 {
			c.rate = rate
		}
	}
}
