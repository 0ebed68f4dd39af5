package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ScrollKind says how a ScrollEvent's Amount is measured.
type ScrollKind int

const (
	// ScrollLines moves by wheel notches; positive scrolls down the document.
	ScrollLines ScrollKind = iota
	// ScrollPages moves by viewport heights; positive scrolls down.
	ScrollPages
	// ScrollTo jumps to the absolute offset Amount in pixels.
	ScrollTo
	// ScrollToEnd jumps to the bottom of the document. Amount is unused.
	ScrollToEnd
)

// ScrollEvent is a scroll request raised by the wheel, the keyboard or a script.
type ScrollEvent struct {
	Kind   ScrollKind
	Amount float64
}

// Window provides the platform window, its input and the surface the renderer draws to.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for wheel and keyboard scrolling.
	//
	// Parameters:
	//   - callback: function receiving the scroll request
	SetScrollCallback(callback func(ev ScrollEvent))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil for
	//     windows with no surface
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close stops the message loop and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// callbacks holds the event handlers shared by every Window implementation.
type callbacks struct {
	onUpdate func()
	onResize func(width, height int)
	onScroll func(ev ScrollEvent)
}

func (c *callbacks) SetUpdateCallback(callback func()) {
	c.onUpdate = callback
}

func (c *callbacks) SetResizeCallback(callback func(width, height int)) {
	c.onResize = callback
}

func (c *callbacks) SetScrollCallback(callback func(ev ScrollEvent)) {
	c.onScroll = callback
}

func (c *callbacks) update() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func (c *callbacks) resize(width, height int) {
	if c.onResize != nil {
		c.onResize(width, height)
	}
}

func (c *callbacks) scroll(ev ScrollEvent) {
	if c.onScroll != nil {
		c.onScroll(ev)
	}
}

// engineWindow is the GLFW implementation of the Window interface.
type engineWindow struct {
	callbacks

	// title is the window title displayed in the title bar.
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a GLFW window.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: an error if GLFW cannot create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "scrollscene",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	platformBeginLoop(w)
	defer platformEndLoop(w)

	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		w.update()
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
