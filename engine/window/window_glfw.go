package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window  *glfw.Window
	running bool
	// looping is set while ProcessMessages runs; Close then leaves destruction to the loop.
	looping   bool
	destroyed bool
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		if key == glfw.KeyEscape {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		if ev, ok := KeyScroll(mapGLFWKey(key), mods&glfw.ModShift != 0); ok {
			w.scroll(ev)
		}
	})

	// GLFW reports wheel-up as positive yoff, which scrolls towards the top of the document.
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if yoff != 0 {
			w.scroll(ScrollEvent{Kind: ScrollLines, Amount: -yoff})
		}
	})

	// Framebuffer size is in pixels, which is what the renderer configures its targets with.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		w.resize(width, height)
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

func mapGLFWKey(key glfw.Key) Key {
	switch key {
	case glfw.KeyUp:
		return KeyUp
	case glfw.KeyDown:
		return KeyDown
	case glfw.KeyPageUp:
		return KeyPageUp
	case glfw.KeyPageDown:
		return KeyPageDown
	case glfw.KeySpace:
		return KeySpace
	case glfw.KeyHome:
		return KeyHome
	case glfw.KeyEnd:
		return KeyEnd
	default:
		return KeyUnknown
	}
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor
// from the GLFW window through the wgpuglfw bridge.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil || w.internalWindow.destroyed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.internalWindow.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := w.internalWindow
	if gw == nil || gw.destroyed {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow stops the window. Inside ProcessMessages the window is
// destroyed when the loop returns; otherwise it is destroyed immediately.
func platformCloseWindow(w *engineWindow) error {
	gw := w.internalWindow
	if gw == nil {
		return errors.New("window is not initialized")
	}
	gw.running = false
	if gw.destroyed {
		return nil
	}
	gw.window.SetShouldClose(true)
	if !gw.looping {
		destroy(gw)
	}
	return nil
}

func platformBeginLoop(w *engineWindow) {
	if w.internalWindow != nil {
		w.internalWindow.looping = true
	}
}

func platformEndLoop(w *engineWindow) {
	gw := w.internalWindow
	if gw == nil {
		return
	}
	gw.looping = false
	if !gw.running && !gw.destroyed {
		destroy(gw)
	}
}

func destroy(gw *glfwWindow) {
	gw.window.Destroy()
	glfw.Terminate()
	gw.destroyed = true
}

// platformProcessMessages polls GLFW for pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
