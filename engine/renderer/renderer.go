package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/software"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoOffscreenPass is returned by RenderScreen when the uniforms ask for the
	// offscreen target but RenderOffscreen has not run since the last Present.
	ErrNoOffscreenPass = errors.New("renderer: screen pass needs an offscreen pass this frame")

	// ErrCompositeOffscreen is returned by RenderOffscreen when the draw list holds
	// an object using the composite program, which would sample the target it draws into.
	ErrCompositeOffscreen = errors.New("renderer: composite objects cannot be drawn offscreen")

	// ErrNotConfigured is returned by draw calls made before the first Resize.
	ErrNotConfigured = errors.New("renderer: no framebuffer size, call Resize first")

	// ErrCaptureUnsupported is returned by Capture on backends that cannot read back frames.
	ErrCaptureUnsupported = errors.New("renderer: backend cannot capture frames")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("renderer: closed")
)

// Surface provides the window surface the WebGPU backend presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	width, height int
	frames        uint64

	textVersion  uint64
	textUploaded bool

	offscreenDone bool
	screenDone    bool
	closed        bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	workers              int
}

// Renderer draws the scene in two passes per frame.
//
// A frame is RenderOffscreen, RenderScreen, Present. The offscreen pass draws the
// scene without the mesh into a colour target the size of the viewport; the
// screen pass draws the full scene and the mesh's composite program samples the
// offscreen target. The Renderer tracks that ordering and rejects a screen pass
// that would sample a stale offscreen target.
type Renderer interface {
	// BackendType returns the backend the renderer draws with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Resize recreates the screen and offscreen targets at the new size.
	// Sizes that are not positive or unchanged are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the backend cannot allocate the targets
	Resize(width, height int) error

	// Size returns the current framebuffer size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// UploadText uploads the text texture when its version differs from the
	// last upload.
	//
	// Parameters:
	//   - tex: the text texture
	//
	// Returns:
	//   - bool: true if the texture was uploaded
	//   - error: an error if the upload fails
	UploadText(tex common.TextureStagingData) (bool, error)

	// RenderOffscreen draws the snapshot into the offscreen target.
	//
	// Parameters:
	//   - snap: the scene without the mesh
	//
	// Returns:
	//   - error: ErrCompositeOffscreen if the snapshot contains a composite object,
	//     or a backend error
	RenderOffscreen(snap scene.Snapshot) error

	// RenderScreen draws the snapshot into the screen target.
	//
	// Parameters:
	//   - snap: the full scene
	//   - uniforms: the composite program inputs for this frame
	//
	// Returns:
	//   - error: ErrNoOffscreenPass if uniforms.InputIsOffscreen is set and no
	//     offscreen pass ran this frame, or a backend error
	RenderScreen(snap scene.Snapshot, uniforms Uniforms) error

	// Present shows the screen target and starts a new frame.
	//
	// Returns:
	//   - error: a backend error
	Present() error

	// Frames returns the number of frames presented.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Capture reads back the last presented frame and the offscreen target.
	//
	// Returns:
	//   - *image.RGBA: the presented frame
	//   - *image.RGBA: the offscreen target
	//   - error: ErrCaptureUnsupported if the backend cannot read back
	Capture() (*image.RGBA, *image.RGBA, error)

	// Close releases the backend. Further calls return ErrClosed.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the selected backend.
//
// Parameters:
//   - backendType: the backend to create, ignored when WithBackend is given
//   - surface: the window surface, required by BackendTypeWGPU (may be nil for software)
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the backend cannot be created or configured
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		presentMode: PresentModeVSync,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	if r.backend == nil {
		switch r.backendType {
		case BackendTypeSoftware:
			opts := []software.BackendBuilderOption{software.WithLogger(r.logger)}
			if r.workers > 0 {
				opts = append(opts, software.WithWorkers(r.workers))
			}
			r.backend = software.NewBackend(opts...)
		case BackendTypeWGPU:
			if surface == nil {
				return nil, errors.New("renderer: the wgpu backend needs a window surface")
			}
			b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.presentMode, r.logger)
			if err != nil {
				return nil, fmt.Errorf("renderer: create wgpu backend: %w", err)
			}
			r.backend = b
		default:
			return nil, fmt.Errorf("renderer: unsupported backend %s", r.backendType)
		}
	}

	if r.width > 0 && r.height > 0 {
		if err := r.backend.Configure(r.width, r.height); err != nil {
			r.backend.Release()
			return nil, fmt.Errorf("renderer: configure %dx%d: %w", r.width, r.height, err)
		}
	}
	r.logger.Info("renderer created", "backend", r.backendType.String(), "width", r.width, "height", r.height)
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return nil
	}
	if err := r.backend.Configure(width, height); err != nil {
		return fmt.Errorf("renderer: resize to %dx%d: %w", width, height, err)
	}
	r.width, r.height = width, height
	// The old offscreen target is gone.
	r.offscreenDone = false
	r.logger.Debug("renderer resized", "width", width, "height", height)
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) UploadText(tex common.TextureStagingData) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, ErrClosed
	}
	if r.textUploaded && tex.Version == r.textVersion {
		return false, nil
	}
	if err := r.backend.UploadText(tex); err != nil {
		return false, fmt.Errorf("renderer: upload text texture v%d: %w", tex.Version, err)
	}
	r.textVersion = tex.Version
	r.textUploaded = true
	return true, nil
}

func (r *renderer) RenderOffscreen(snap scene.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ready(); err != nil {
		return err
	}
	if snap.Contains(shader.ProgramComposite) {
		return ErrCompositeOffscreen
	}
	if err := r.backend.DrawOffscreen(snap); err != nil {
		return fmt.Errorf("renderer: offscreen pass: %w", err)
	}
	r.offscreenDone = true
	return nil
}

func (r *renderer) RenderScreen(snap scene.Snapshot, uniforms Uniforms) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ready(); err != nil {
		return err
	}
	if uniforms.InputIsOffscreen && !r.offscreenDone {
		return ErrNoOffscreenPass
	}
	if err := r.backend.DrawScreen(snap, uniforms.Params(), uniforms.InputIsOffscreen); err != nil {
		return fmt.Errorf("renderer: screen pass: %w", err)
	}
	r.screenDone = true
	return nil
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ready(); err != nil {
		return err
	}
	r.offscreenDone = false
	if !r.screenDone {
		return nil
	}
	r.screenDone = false
	if err := r.backend.Present(); err != nil {
		return fmt.Errorf("renderer: present: %w", err)
	}
	r.frames++
	return nil
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) Capture() (*image.RGBA, *image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, nil, ErrClosed
	}
	reader, ok := r.backend.(frameReader)
	if !ok {
		return nil, nil, ErrCaptureUnsupported
	}
	return reader.Frame(), reader.Offscreen(), nil
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.backend.Release()
	r.logger.Debug("renderer closed", "frames", r.frames)
}

// ready must be called with r.mu held.
func (r *renderer) ready() error {
	if r.closed {
		return ErrClosed
	}
	if r.width <= 0 || r.height <= 0 {
		return ErrNotConfigured
	}
	return nil
}
