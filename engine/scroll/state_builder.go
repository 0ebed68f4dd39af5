package scroll

// StateBuilderOption is a functional option for configuring a State.
type StateBuilderOption func(*stateImpl)

// WithViewport sets the initial viewport size.
//
// Parameters:
//   - width, height: viewport size in pixels
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithViewport(width, height int) StateBuilderOption {
	return func(s *stateImpl) {
		s.viewportWidth.Store(int64(max(width, 0)))
		s.viewportHeight.Store(int64(max(height, 0)))
	}
}

// WithDocumentHeight sets the initial document height.
//
// Parameters:
//   - height: document height in pixels
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithDocumentHeight(height float64) StateBuilderOption {
	return func(s *stateImpl) {
		storeFloat(&s.documentHeight, max(height, 0))
	}
}

// WithLineHeight sets how many pixels one wheel line scrolls. Values <= 0 are ignored.
//
// Parameters:
//   - pixels: pixels per wheel line (default 100)
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithLineHeight(pixels float64) StateBuilderOption {
	return func(s *stateImpl) {
		if pixels > 0 {
			s.lineHeight = pixels
		}
	}
}
