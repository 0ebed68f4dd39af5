package scroll

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/scrollscene/common"
)

// Snapshot is an immutable view of the scroll state taken once at frame start.
type Snapshot struct {
	// Offset is the scroll offset in pixels, never negative.
	Offset float64
	// Percentage is Offset over the scrollable height, clamped to [0, 1].
	Percentage float32
	// Section is the index of the viewport-sized section containing Offset.
	Section int
	// ViewportWidth and ViewportHeight are the viewport size in pixels.
	ViewportWidth, ViewportHeight int
	// DocumentHeight is the total document height in pixels.
	DocumentHeight float64
}

// stateImpl is the implementation of the State interface.
// Scalar fields are stored atomically so readers never block the writer.
type stateImpl struct {
	offset         atomic.Uint64 // float64 bits
	documentHeight atomic.Uint64 // float64 bits
	viewportWidth  atomic.Int64
	viewportHeight atomic.Int64

	lineHeight float64

	cbMu            sync.Mutex
	section         int
	onSectionChange func(prev, next int)
}

// State holds the scroll offset and viewport/document geometry.
//
// State has a single writer (the window's scroll, key and resize callbacks) and
// any number of readers. Readers should call Snapshot once per frame and work
// from the returned value so every consumer in the frame agrees on the offset.
type State interface {
	// SetScroll sets the absolute scroll offset, clamped to [0, MaxScroll].
	//
	// Parameters:
	//   - offset: the new offset in pixels
	SetScroll(offset float64)

	// ScrollBy moves the offset by a number of wheel lines. Positive deltas scroll
	// up (towards the top of the document), matching wheel conventions.
	//
	// Parameters:
	//   - lines: wheel delta in lines
	ScrollBy(lines float64)

	// ScrollPixels moves the offset by a number of pixels, positive scrolls down.
	//
	// Parameters:
	//   - pixels: the pixel delta
	ScrollPixels(pixels float64)

	// SetViewport updates the viewport size and re-clamps the offset.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	SetViewport(width, height int)

	// SetDocumentHeight updates the total document height and re-clamps the offset.
	//
	// Parameters:
	//   - height: document height in pixels
	SetDocumentHeight(height float64)

	// Offset returns the current scroll offset in pixels.
	//
	// Returns:
	//   - float64: the offset
	Offset() float64

	// MaxScroll returns the scrollable height (document height minus viewport height), never negative.
	//
	// Returns:
	//   - float64: the maximum offset
	MaxScroll() float64

	// Percentage returns Offset / MaxScroll clamped to [0, 1], or 0 when the document does not scroll.
	//
	// Returns:
	//   - float32: the scroll percentage
	Percentage() float32

	// Section returns floor(Offset / viewport height), or 0 for an empty viewport.
	//
	// Returns:
	//   - int: the current section index
	Section() int

	// Snapshot captures every derived value at once.
	//
	// Returns:
	//   - Snapshot: the captured state
	Snapshot() Snapshot

	// OnSectionChange registers a callback fired by the writer whenever the section index changes.
	//
	// Parameters:
	//   - callback: function receiving the previous and new section index (nil to disable)
	OnSectionChange(callback func(prev, next int))
}

var _ State = &stateImpl{}

// NewState creates a State for the given viewport and document height with the offset at the top.
//
// Parameters:
//   - options: functional options for the state
//
// Returns:
//   - State: the newly created state
func NewState(options ...StateBuilderOption) State {
	s := &stateImpl{
		lineHeight: 100,
	}
	s.viewportWidth.Store(1280)
	s.viewportHeight.Store(720)
	storeFloat(&s.documentHeight, 720)

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *stateImpl) SetScroll(offset float64) {
	if math.IsNaN(offset) {
		offset = 0
	}
	storeFloat(&s.offset, common.Clamp(offset, 0, s.MaxScroll()))
	s.notifySection()
}

func (s *stateImpl) ScrollBy(lines float64) {
	s.ScrollPixels(-lines * s.lineHeight)
}

func (s *stateImpl) ScrollPixels(pixels float64) {
	s.SetScroll(s.Offset() + pixels)
}

func (s *stateImpl) SetViewport(width, height int) {
	s.viewportWidth.Store(int64(max(width, 0)))
	s.viewportHeight.Store(int64(max(height, 0)))
	s.SetScroll(s.Offset())
}

func (s *stateImpl) SetDocumentHeight(height float64) {
	storeFloat(&s.documentHeight, max(height, 0))
	s.SetScroll(s.Offset())
}

func (s *stateImpl) Offset() float64 {
	return loadFloat(&s.offset)
}

func (s *stateImpl) MaxScroll() float64 {
	return max(loadFloat(&s.documentHeight)-float64(s.viewportHeight.Load()), 0)
}

func (s *stateImpl) Percentage() float32 {
	return percentage(s.Offset(), s.MaxScroll())
}

func (s *stateImpl) Section() int {
	return section(s.Offset(), int(s.viewportHeight.Load()))
}

func (s *stateImpl) Snapshot() Snapshot {
	offset := s.Offset()
	vh := int(s.viewportHeight.Load())
	return Snapshot{
		Offset:         offset,
		Percentage:     percentage(offset, s.MaxScroll()),
		Section:        section(offset, vh),
		ViewportWidth:  int(s.viewportWidth.Load()),
		ViewportHeight: vh,
		DocumentHeight: loadFloat(&s.documentHeight),
	}
}

func (s *stateImpl) OnSectionChange(callback func(prev, next int)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onSectionChange = callback
}

// notifySection fires the section callback when the derived section index moved.
func (s *stateImpl) notifySection() {
	next := s.Section()

	s.cbMu.Lock()
	prev := s.section
	cb := s.onSectionChange
	s.section = next
	s.cbMu.Unlock()

	if prev != next && cb != nil {
		cb(prev, next)
	}
}

func percentage(offset, maxScroll float64) float32 {
	if maxScroll <= 0 {
		return 0
	}
	return float32(common.Clamp(offset/maxScroll, 0, 1))
}

func section(offset float64, viewportHeight int) int {
	if viewportHeight <= 0 {
		return 0
	}
	return int(math.Floor(offset / float64(viewportHeight)))
}

func storeFloat(v *atomic.Uint64, f float64) {
	v.Store(math.Float64bits(f))
}

func loadFloat(v *atomic.Uint64) float64 {
	return math.Float64frombits(v.Load())
}
