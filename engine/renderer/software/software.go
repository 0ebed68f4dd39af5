// Package software is a CPU rasterizer that draws scene snapshots with the same
// two programs, blend state and depth rules as the GPU backend. It renders
// without a window, so it backs headless frame export and the render tests.
package software

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
)

// DefaultBandHeight is the number of framebuffer rows rasterized per task.
const DefaultBandHeight = 32

// ErrNotConfigured is returned by draw calls made before Configure.
var ErrNotConfigured = errors.New("software: backend not configured")

// Backend rasterizes on the CPU into two float targets: the offscreen colour
// buffer sampled by the composite program and the screen buffer that Present
// publishes. Row bands of each draw run in parallel on a worker pool.
type Backend struct {
	mu *sync.Mutex

	workers    int
	bandHeight int
	pool       worker.DynamicWorkerPool
	taskID     int

	width, height int
	offscreen     *target
	screen        *target
	presented     *image.RGBA

	text        *shader.BufferSampler
	textVersion uint64

	logger *slog.Logger
}

// NewBackend creates an unconfigured software backend. Call Configure before drawing.
//
// Parameters:
//   - options: a variadic list of BackendBuilderOption functions
//
// Returns:
//   - *Backend: the backend
func NewBackend(options ...BackendBuilderOption) *Backend {
	b := &Backend{
		mu:         &sync.Mutex{},
		workers:    runtime.NumCPU(),
		bandHeight: DefaultBandHeight,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	b.workers = max(b.workers, 1)
	b.bandHeight = max(b.bandHeight, 1)
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, time.Second)
	return b
}

// Configure allocates both targets at the given size, discarding their contents.
//
// Parameters:
//   - width, height: framebuffer size in pixels
//
// Returns:
//   - error: an error if either dimension is not positive
func (b *Backend) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("software: invalid framebuffer size %dx%d", width, height)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = width, height
	b.offscreen = newTarget(width, height)
	b.screen = newTarget(width, height)
	b.logger.Debug("software targets configured", "width", width, "height", height)
	return nil
}

// UploadText replaces the texture sampled by the basic program.
//
// Parameters:
//   - tex: the text texture; an empty texture unbinds it
//
// Returns:
//   - error: an error if the pixel data is shorter than the declared size
func (b *Backend) UploadText(tex common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tex.Width == 0 || tex.Height == 0 {
		b.text = nil
		b.textVersion = tex.Version
		return nil
	}
	if len(tex.Pixels) < int(tex.Width*tex.Height*4) {
		return fmt.Errorf("software: text texture has %d bytes, want %d", len(tex.Pixels), tex.Width*tex.Height*4)
	}
	b.text = shader.NewImageSampler(tex.Image())
	b.textVersion = tex.Version
	return nil
}

// DrawOffscreen clears the offscreen target and draws the snapshot into it.
//
// Parameters:
//   - snap: the objects to draw
//
// Returns:
//   - error: ErrNotConfigured before Configure
func (b *Backend) DrawOffscreen(snap scene.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.offscreen == nil {
		return ErrNotConfigured
	}
	b.offscreen.clear()
	b.draw(b.offscreen, &snap, fragmentInputs{text: b.textSampler()})
	return nil
}

// DrawScreen clears the screen target and draws the snapshot into it. The
// composite program samples the offscreen target when inputIsOffscreen is set
// and the text texture otherwise.
//
// Parameters:
//   - snap: the objects to draw
//   - params: the composite program uniforms
//   - inputIsOffscreen: selects the composite input texture
//
// Returns:
//   - error: ErrNotConfigured before Configure
func (b *Backend) DrawScreen(snap scene.Snapshot, params shader.Params, inputIsOffscreen bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.screen == nil {
		return ErrNotConfigured
	}
	in := fragmentInputs{text: b.textSampler(), params: params}
	if inputIsOffscreen {
		in.input = shader.NewBufferSampler(b.offscreen.width, b.offscreen.height, b.offscreen.color)
	} else {
		in.input = in.text
	}

	b.screen.clear()
	b.draw(b.screen, &snap, in)
	return nil
}

// Present publishes the screen target so Frame returns it.
//
// Returns:
//   - error: ErrNotConfigured before Configure
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.screen == nil {
		return ErrNotConfigured
	}
	b.presented = b.screen.image()
	return nil
}

// Frame returns the last presented frame, or nil before the first Present.
//
// Returns:
//   - *image.RGBA: the presented frame
func (b *Backend) Frame() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presented
}

// Offscreen returns a copy of the offscreen colour buffer.
//
// Returns:
//   - *image.RGBA: the offscreen target, or nil before Configure
func (b *Backend) Offscreen() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.offscreen == nil {
		return nil
	}
	return b.offscreen.image()
}

// Release drops both targets and the text texture.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offscreen, b.screen, b.presented, b.text = nil, nil, nil, nil
}

// textSampler avoids storing a typed nil in the shader.Sampler interface.
func (b *Backend) textSampler() shader.Sampler {
	if b.text == nil {
		return nil
	}
	return b.text
}

// draw rasterizes the snapshot in draw-list order. Each object is split into
// row bands that run on the pool; a barrier between objects keeps blending
// order intact.
func (b *Backend) draw(t *target, snap *scene.Snapshot, in fragmentInputs) {
	for _, obj := range snap.Objects {
		dc := setupDraw(obj, snap, t.width, t.height)
		if len(dc.tris) == 0 {
			continue
		}

		var wg sync.WaitGroup
		for y0 := 0; y0 < t.height; y0 += b.bandHeight {
			y1 := min(y0+b.bandHeight, t.height)
			wg.Add(1)
			b.taskID++
			b.pool.SubmitTask(worker.Task{
				ID: b.taskID,
				Do: func() (any, error) {
					defer wg.Done()
					rasterize(t, dc, in, y0, y1)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}
}
