package text

import "strings"

// Placement is where a single heading is drawn on the canvas.
// X and Y are the centre of the rendered line.
type Placement struct {
	Index int
	Text  string
	X, Y  float64
}

// Anchor returns the vertical centre of heading i of n on a canvas of the given
// height, before the scroll offset is applied: i*H/N + H/(2N).
// Returns 0 when n <= 0.
//
// Parameters:
//   - i: zero-based heading index
//   - n: total number of sections
//   - height: canvas height in pixels
//
// Returns:
//   - float64: the anchor in pixels from the top of the canvas
func Anchor(i, n int, height float64) float64 {
	if n <= 0 {
		return 0
	}
	slot := height / float64(n)
	return float64(i)*slot + slot/2
}

// Layout positions every heading horizontally centred and vertically at its
// anchor shifted up by the scroll offset. Blank headings are skipped but still
// occupy their slot, so the remaining headings keep their positions.
//
// Parameters:
//   - headings: heading text per section, in document order
//   - width, height: canvas size in pixels
//   - scrollOffset: the current scroll offset in pixels
//
// Returns:
//   - []Placement: placements for the non-blank headings
func Layout(headings []string, width, height int, scrollOffset float64) []Placement {
	placements := make([]Placement, 0, len(headings))
	for i, h := range headings {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		placements = append(placements, Placement{
			Index: i,
			Text:  h,
			X:     float64(width) / 2,
			Y:     Anchor(i, len(headings), float64(height)) - scrollOffset,
		})
	}
	return placements
}

const (
	// PointRadius is the radius of a navigation point in pixels.
	PointRadius  = 6.0
	pointSpacing = 24.0
	pointMargin  = 32.0
)

// PointPlacement is the centre of one navigation point.
type PointPlacement struct {
	Index  int
	X, Y   float64
	Active bool
}

// PointLayout stacks the navigation points in a vertically centred column near
// the right edge of the canvas.
//
// Parameters:
//   - states: the active flag of every point
//   - width, height: canvas size in pixels
//
// Returns:
//   - []PointPlacement: one placement per point
func PointLayout(states []bool, width, height int) []PointPlacement {
	placements := make([]PointPlacement, len(states))
	mid := float64(len(states)-1) / 2
	for i, active := range states {
		placements[i] = PointPlacement{
			Index:  i,
			X:      float64(width) - pointMargin,
			Y:      float64(height)/2 + (float64(i)-mid)*pointSpacing,
			Active: active,
		}
	}
	return placements
}
