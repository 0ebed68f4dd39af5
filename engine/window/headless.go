package window

import (
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// ResizeStep resizes a headless window before the given frame.
type ResizeStep struct {
	Frame         int
	Width, Height int
}

// headlessWindow is a Window with no platform surface. Its message loop runs a
// fixed number of iterations and replays scripted scroll and resize events.
type headlessWindow struct {
	callbacks

	width, height int
	frames        int
	offsets       []float64
	resizes       []ResizeStep

	frame   int
	stopped atomic.Bool
}

// Headless is a Window driven by a script instead of user input.
type Headless interface {
	Window

	// Frame returns the index of the current message loop iteration.
	//
	// Returns:
	//   - int: iterations completed so far
	Frame() int
}

var _ Headless = &headlessWindow{}

// NewHeadlessWindow creates a Window with no surface for offline rendering and tests.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Headless: the window
func NewHeadlessWindow(options ...HeadlessBuilderOption) Headless {
	w := &headlessWindow{
		width:  800,
		height: 600,
		frames: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *headlessWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (w *headlessWindow) IsRunning() bool {
	return !w.stopped.Load() && w.frame < w.frames
}

func (w *headlessWindow) Close() error {
	w.stopped.Store(true)
	return nil
}

// ProcessMessages delivers the events scripted for each frame, then calls the
// update callback, until the frame count is reached or Close is called.
func (w *headlessWindow) ProcessMessages() {
	for w.IsRunning() {
		for _, r := range w.resizes {
			if r.Frame == w.frame && (r.Width != w.width || r.Height != w.height) {
				w.width, w.height = r.Width, r.Height
				w.resize(r.Width, r.Height)
			}
		}
		if w.frame < len(w.offsets) {
			w.scroll(ScrollEvent{Kind: ScrollTo, Amount: w.offsets[w.frame]})
		}
		w.update()
		w.frame++
	}
}

func (w *headlessWindow) Width() int {
	return w.width
}

func (w *headlessWindow) Height() int {
	return w.height
}

func (w *headlessWindow) Frame() int {
	return w.frame
}
