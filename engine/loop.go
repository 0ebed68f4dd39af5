package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Carmen-Shannon/scrollscene/engine/asset"
	"github.com/Carmen-Shannon/scrollscene/engine/game_object"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/scroll"
	"github.com/Carmen-Shannon/scrollscene/engine/text"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameStats describes what one call to RenderFrame did.
type FrameStats struct {
	// Frame is the renderer's presented frame count after this frame.
	Frame uint64
	// Passes is the number of render passes issued, 2 on success.
	Passes int
	// Scroll is the scroll state the frame was built from.
	Scroll scroll.Snapshot
	// Transform is the pose applied to the mesh. Zero when the mesh was not loaded.
	Transform scroll.Transform
	// MeshLoaded is true when the mesh slot held a loaded mesh at frame start.
	MeshLoaded bool
	// OffscreenHadMesh is true if the offscreen draw list contained the mesh.
	OffscreenHadMesh bool
	// MeshDrawn is true when the screen pass drew the mesh.
	MeshDrawn bool
	// TextUploaded is true when the text texture was uploaded this frame.
	TextUploaded bool
	// Points holds the active flag of every navigation point for this frame's section.
	Points []bool
	// ActivePoint is the index of the active navigation point, or -1 when none is.
	ActivePoint int
	// Uniforms are the composite inputs the screen pass used.
	Uniforms renderer.Uniforms
}

// Loop runs one frame of the scroll scene at a time.
//
// A frame drains finished asset loads and page reloads and reads the scroll
// position once. It redraws the heading and navigation point texture if needed
// and poses the mesh. It renders the scene without the mesh into the offscreen
// target, then renders the full scene to the screen with the mesh sampling
// that target.
type Loop interface {
	// RenderFrame renders and presents one frame.
	//
	// Parameters:
	//   - dt: wall-clock time since the previous frame
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: a renderer error
	RenderFrame(dt time.Duration) (FrameStats, error)

	// Resize propagates a new viewport size to the camera, the text plane, the
	// renderer targets, the text canvas, the scroll state and the resolution
	// uniform. Never touches the mesh. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	//
	// Returns:
	//   - error: an error if the renderer cannot reallocate its targets
	Resize(width, height int) error

	// Resolution returns the resolution uniform.
	//
	// Returns:
	//   - mgl32.Vec2: the viewport size in pixels
	Resolution() mgl32.Vec2

	// LoadMesh starts loading the mesh in the background. The result is applied
	// at the start of the first frame after it completes.
	//
	// Parameters:
	//   - name: a label for logging
	//   - load: the blocking load function
	//
	// Returns:
	//   - bool: false if a load is already in flight
	LoadMesh(name string, load func() (game_object.GameObject, error)) bool

	// PostPage hands a reloaded page to the loop. Safe to call from any goroutine;
	// the page is applied at the start of the next frame.
	//
	// Parameters:
	//   - u: the reload result
	PostPage(u page.Update)

	// Document returns the page currently driving the headings and document height.
	//
	// Returns:
	//   - *page.Document: the page
	Document() *page.Document
}

type loop struct {
	scene    scene.Scene
	renderer renderer.Renderer
	scroll   scroll.State
	text     text.Generator
	clock    renderer.Clock
	assets   *asset.Loader[game_object.GameObject]
	logger   *slog.Logger

	doc         *page.Document
	pageUpdates chan page.Update

	width, height  int
	blurSize       float32
	documentHeight float64
	textUploaded   bool

	onLoadFailed func(error)
}

var _ Loop = &loop{}

func (l *loop) RenderFrame(dt time.Duration) (FrameStats, error) {
	var stats FrameStats

	l.assets.Drain(l.handleLoad)
	l.drainPages()

	snap := l.scroll.Snapshot()
	stats.Scroll = snap
	stats.Points = l.doc.PointStates(snap.Section)
	stats.ActivePoint = slices.Index(stats.Points, true)

	l.text.SetPoints(stats.Points)
	l.text.Update(l.doc.Headings, snap.Offset)
	if l.text.TakeDirty() || !l.textUploaded {
		uploaded, err := l.renderer.UploadText(l.text.Texture())
		if err != nil {
			return stats, err
		}
		l.textUploaded = true
		stats.TextUploaded = uploaded
	}

	if mesh, ok := l.scene.Mesh(); ok {
		stats.MeshLoaded = true
		stats.Transform = scroll.MapScroll(snap.Percentage)
		stats.Transform.Apply(mesh)
	}

	l.scene.HideMesh()
	offscreen := l.scene.Snapshot()
	l.scene.ShowMesh()
	stats.OffscreenHadMesh = offscreen.Contains(shader.ProgramComposite)
	if err := l.renderer.RenderOffscreen(offscreen); err != nil {
		return stats, err
	}
	stats.Passes++

	stats.Uniforms = renderer.Uniforms{
		Time:             l.clock.Advance(dt),
		Resolution:       l.Resolution(),
		BlurSize:         l.blurSize,
		InputIsOffscreen: true,
	}
	screen := l.scene.Snapshot()
	stats.MeshDrawn = screen.Contains(shader.ProgramComposite)
	if err := l.renderer.RenderScreen(screen, stats.Uniforms); err != nil {
		return stats, err
	}
	stats.Passes++

	if err := l.renderer.Present(); err != nil {
		return stats, err
	}
	stats.Frame = l.renderer.Frames()
	return stats, nil
}

func (l *loop) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		l.logger.Debug("ignoring resize", "width", width, "height", height)
		return nil
	}
	// The renderer goes first so a failure leaves every part at the old size.
	if err := l.renderer.Resize(width, height); err != nil {
		return err
	}
	l.scene.Resize(width, height)
	l.text.Resize(width, height)
	l.scroll.SetViewport(width, height)
	l.width, l.height = width, height
	l.scroll.SetDocumentHeight(l.scrollHeight())
	return nil
}

// scrollHeight is the configured document height, or one viewport per section.
func (l *loop) scrollHeight() float64 {
	if l.documentHeight > 0 {
		return l.documentHeight
	}
	return float64(l.doc.DocumentHeight(l.height))
}

func (l *loop) Resolution() mgl32.Vec2 {
	return mgl32.Vec2{float32(l.width), float32(l.height)}
}

func (l *loop) LoadMesh(name string, load func() (game_object.GameObject, error)) bool {
	return l.assets.Submit(name, l.scene.MeshSlot(), load)
}

func (l *loop) PostPage(u page.Update) {
	// Only the latest reload matters; replace a pending one.
	for {
		select {
		case l.pageUpdates <- u:
			return
		default:
			select {
			case <-l.pageUpdates:
			default:
			}
		}
	}
}

func (l *loop) Document() *page.Document {
	return l.doc
}

func (l *loop) drainPages() {
	for {
		select {
		case u := <-l.pageUpdates:
			if u.Err != nil {
				l.logger.Warn("page reload failed, keeping the previous page", "error", u.Err)
				continue
			}
			l.setDocument(u.Document)
		default:
			return
		}
	}
}

func (l *loop) setDocument(doc *page.Document) {
	if doc == nil {
		doc = &page.Document{}
	}
	l.doc = doc
	if l.height > 0 {
		l.scroll.SetDocumentHeight(l.scrollHeight())
	}
	l.logger.Info("page applied", "title", doc.Title, "sections", doc.Sections(), "points", doc.Points)
}

func (l *loop) handleLoad(res asset.Result[game_object.GameObject]) {
	if res.Err == nil {
		return
	}
	if l.onLoadFailed != nil {
		l.onLoadFailed(res.Err)
	}
}

func (l *loop) onSectionChange(prev, next int) {
	active := slices.Index(l.doc.PointStates(next), true)
	l.logger.Debug("section changed", "from", prev, "to", next, "active_point", active)
}

// applyScroll turns a window scroll request into a change of scroll state.
func applyScroll(state scroll.State, ev window.ScrollEvent, viewportHeight int) {
	switch ev.Kind {
	case window.ScrollLines:
		// State.ScrollBy treats positive deltas as scrolling up.
		state.ScrollBy(-ev.Amount)
	case window.ScrollPages:
		state.ScrollPixels(ev.Amount * float64(viewportHeight))
	case window.ScrollTo:
		state.SetScroll(ev.Amount)
	case window.ScrollToEnd:
		state.SetScroll(state.MaxScroll())
	}
}

// errFrame wraps an error returned by a frame.
func errFrame(frame uint64, err error) error {
	if errors.Is(err, renderer.ErrClosed) {
		return err
	}
	return fmt.Errorf("engine: frame %d: %w", frame, err)
}
