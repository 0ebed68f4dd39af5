package window

// HeadlessBuilderOption is a functional option for configuring a headless window.
type HeadlessBuilderOption func(w *headlessWindow)

// WithHeadlessSize sets the framebuffer size reported by the window.
//
// Parameters:
//   - width, height: the size in pixels; non-positive values are ignored
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithHeadlessSize(width, height int) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		if width > 0 && height > 0 {
			w.width, w.height = width, height
		}
	}
}

// WithFrames sets how many message loop iterations run before the window stops.
//
// Parameters:
//   - frames: the iteration count; values < 1 run a single frame
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithFrames(frames int) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.frames = max(frames, 1)
	}
}

// WithScrollOffsets scripts an absolute scroll offset for each frame, starting at frame 0.
// Frames past the end of the list keep the last offset.
//
// Parameters:
//   - offsets: scroll offsets in pixels
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithScrollOffsets(offsets ...float64) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.offsets = append([]float64(nil), offsets...)
	}
}

// WithResizes scripts framebuffer resizes.
//
// Parameters:
//   - steps: the resizes, each applied before its frame
//
// Returns:
//   - HeadlessBuilderOption: option function to apply
func WithResizes(steps ...ResizeStep) HeadlessBuilderOption {
	return func(w *headlessWindow) {
		w.resizes = append(w.resizes, steps...)
	}
}
