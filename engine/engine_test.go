package engine

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/asset"
	"github.com/Carmen-Shannon/scrollscene/engine/game_object"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer is a Renderer that keeps every draw list it is given.
type recordingRenderer struct {
	width, height int
	frames        uint64
	uploads       []uint64
	offscreen     []scene.Snapshot
	screen        []scene.Snapshot
	uniforms      []renderer.Uniforms
	failScreen    error
	failResize    error
	panicOnScreen bool
	closed        bool
}

var _ renderer.Renderer = &recordingRenderer{}

func (r *recordingRenderer) BackendType() renderer.RendererBackendType {
	return renderer.BackendTypeSoftware
}

func (r *recordingRenderer) Resize(width, height int) error {
	if r.failResize != nil {
		return r.failResize
	}
	r.width, r.height = width, height
	return nil
}

func (r *recordingRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *recordingRenderer) UploadText(tex common.TextureStagingData) (bool, error) {
	r.uploads = append(r.uploads, tex.Version)
	return true, nil
}

func (r *recordingRenderer) RenderOffscreen(snap scene.Snapshot) error {
	r.offscreen = append(r.offscreen, snap)
	return nil
}

func (r *recordingRenderer) RenderScreen(snap scene.Snapshot, uniforms renderer.Uniforms) error {
	if r.panicOnScreen {
		panic("device lost")
	}
	if r.failScreen != nil {
		return r.failScreen
	}
	r.screen = append(r.screen, snap)
	r.uniforms = append(r.uniforms, uniforms)
	return nil
}

func (r *recordingRenderer) Present() error {
	r.frames++
	return nil
}

func (r *recordingRenderer) Frames() uint64 {
	return r.frames
}

func (r *recordingRenderer) Capture() (*image.RGBA, *image.RGBA, error) {
	return nil, nil, renderer.ErrCaptureUnsupported
}

func (r *recordingRenderer) Close() {
	r.closed = true
}

func fourSections() *page.Document {
	return &page.Document{Headings: []string{"One", "Two", "Three", "Four"}, Points: 4}
}

func meshObject() game_object.GameObject {
	return scene.NewMeshObject(model.NewModel(model.WithMesh(model.NewPlane(1, 1))))
}

func resolveMesh(t *testing.T, s scene.Scene) game_object.GameObject {
	t.Helper()
	mesh := meshObject()
	require.True(t, s.MeshSlot().Begin())
	s.MeshSlot().Resolve(mesh)
	return mesh
}

func newTestEngine(t *testing.T, r renderer.Renderer, w window.Window, options ...EngineBuilderOption) *engine {
	t.Helper()
	opts := append([]EngineBuilderOption{
		WithWindow(w),
		WithRenderer(r),
		WithClock(renderer.NewClock(renderer.ClockModeFixed)),
	}, options...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e.(*engine)
}

func TestNewEnginePanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewEngine(WithRenderer(&recordingRenderer{})) })
	assert.Panics(t, func() { _, _ = NewEngine(WithWindow(window.NewHeadlessWindow())) })
}

func TestNewEngineSizesRendererToWindow(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)))

	w, h := r.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
	assert.Equal(t, mgl32.Vec2{64, 48}, e.Loop().Resolution())
}

func TestOffscreenPassNeverContainsMesh(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)))

	stats, err := e.Loop().RenderFrame(time.Second / 60)
	require.NoError(t, err)
	assert.False(t, stats.MeshLoaded)
	assert.False(t, stats.MeshDrawn, "no mesh before load")
	assert.Equal(t, 2, stats.Passes)

	resolveMesh(t, e.Scene())
	for range 3 {
		stats, err = e.Loop().RenderFrame(time.Second / 60)
		require.NoError(t, err)
		assert.True(t, stats.MeshLoaded)
		assert.False(t, stats.OffscreenHadMesh)
		assert.True(t, stats.MeshDrawn)
		assert.False(t, e.Scene().MeshHidden(), "the mesh is shown again after the offscreen pass")
	}

	require.Len(t, r.offscreen, 4)
	for _, snap := range r.offscreen {
		assert.False(t, snap.Contains(shader.ProgramComposite))
		assert.True(t, snap.Contains(shader.ProgramBasic), "the text plane is always drawn")
	}
	for _, u := range r.uniforms {
		assert.True(t, u.InputIsOffscreen)
	}
	assert.Equal(t, uint64(4), r.frames)
}

func TestScrollPercentageDrivesMesh(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()))
	mesh := resolveMesh(t, e.Scene())

	// Four viewport-high sections leave three viewports to scroll through.
	assert.InDelta(t, 1800, e.Scroll().MaxScroll(), 1e-9)
	e.Scroll().SetScroll(900)

	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stats.Scroll.Percentage, 1e-6)
	assert.Equal(t, 1, stats.Scroll.Section)

	rx, ry, _ := mesh.Rotation()
	assert.InDelta(t, 4*math32.Pi, ry, 1e-4)
	assert.InDelta(t, 2*math32.Pi, rx, 1e-4)
	sx, sy, sz := mesh.Scale()
	assert.InDelta(t, 1.5, sx, 1e-4)
	assert.Equal(t, sx, sy)
	assert.Equal(t, sx, sz)
	px, py, pz := mesh.Position()
	assert.InDelta(t, 0, px, 1e-4)
	assert.InDelta(t, 0, py, 1e-4)
	assert.Zero(t, pz)
}

func TestResizeWithoutMesh(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()))
	require.Equal(t, asset.NotLoaded, e.Scene().MeshSlot().State())

	require.NotPanics(t, func() {
		require.NoError(t, e.Loop().Resize(1024, 768))
	})

	assert.InDelta(t, 1024.0/768.0, e.Scene().Camera().Aspect(), 1e-6)
	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
	tw, th := e.text.Size()
	assert.Equal(t, 1024, tw)
	assert.Equal(t, 768, th)
	assert.Equal(t, mgl32.Vec2{1024, 768}, e.Loop().Resolution())
	assert.InDelta(t, 3*768, e.Scroll().MaxScroll(), 1e-9)

	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec2{1024, 768}, stats.Uniforms.Resolution)

	// Invalid sizes are ignored.
	require.NoError(t, e.Loop().Resize(0, 768))
	assert.Equal(t, mgl32.Vec2{1024, 768}, e.Loop().Resolution())
}

func TestFailedRendererResizeKeepsOldSize(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()))
	r.failResize = errors.New("surface lost")

	err := e.Loop().Resize(1024, 512)
	require.ErrorIs(t, err, r.failResize)

	assert.InDelta(t, 800.0/600.0, e.Scene().Camera().Aspect(), 1e-6, "camera keeps the old aspect")
	tw, th := e.text.Size()
	assert.Equal(t, 800, tw)
	assert.Equal(t, 600, th)
	assert.Equal(t, mgl32.Vec2{800, 600}, e.Loop().Resolution())
	assert.InDelta(t, 3*600, e.Scroll().MaxScroll(), 1e-9)
}

func TestDocumentHeightOverride(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()), WithDocumentHeight(5000))
	assert.InDelta(t, 4400, e.Scroll().MaxScroll(), 1e-9)

	// The override survives resizes and page reloads.
	require.NoError(t, e.Loop().Resize(800, 1000))
	assert.InDelta(t, 4000, e.Scroll().MaxScroll(), 1e-9)
	e.Loop().PostPage(page.Update{Document: &page.Document{Headings: []string{"only"}}})
	_, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.InDelta(t, 4000, e.Scroll().MaxScroll(), 1e-9)
}

func TestSectionChangeMovesActivePoint(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()))

	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ActivePoint)
	assert.Equal(t, []bool{true, false, false, false}, stats.Points)

	e.Scroll().SetScroll(600)
	stats, err = e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scroll.Section)
	assert.Equal(t, 1, stats.ActivePoint)
	assert.Equal(t, []bool{false, true, false, false}, stats.Points)
	assert.True(t, stats.TextUploaded, "the point column is redrawn")

	e.Loop().PostPage(page.Update{Document: &page.Document{Headings: []string{"a", "b"}}})
	stats, err = e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, -1, stats.ActivePoint, "a page without points has no active point")
	assert.Empty(t, stats.Points)
}

func TestTextIsUploadedOnlyWhenRedrawn(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)),
		WithPage(fourSections()))

	for range 3 {
		_, err := e.Loop().RenderFrame(0)
		require.NoError(t, err)
	}
	assert.Len(t, r.uploads, 1)

	e.Scroll().SetScroll(10)
	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.True(t, stats.TextUploaded)
	assert.Len(t, r.uploads, 2)
}

func TestPageReloadAppliesAtFrameStart(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(100, 100)))
	assert.Zero(t, e.Scroll().MaxScroll())

	e.Loop().PostPage(page.Update{Document: &page.Document{Headings: []string{"a"}}})
	e.Loop().PostPage(page.Update{Document: fourSections()})
	assert.Empty(t, e.Loop().Document().Headings, "nothing changes before the next frame")

	_, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, fourSections().Headings, e.Loop().Document().Headings, "the latest reload wins")
	assert.InDelta(t, 300, e.Scroll().MaxScroll(), 1e-9)

	e.Loop().PostPage(page.Update{Err: errors.New("bad html")})
	_, err = e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Len(t, e.Loop().Document().Headings, 4, "a failed reload keeps the page")
}

func TestMeshLoadIsAppliedByTheLoop(t *testing.T) {
	r := &recordingRenderer{}
	var failures []error
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)),
		WithOnLoadFailed(func(err error) { failures = append(failures, err) }))

	require.True(t, e.Loop().LoadMesh("plane", func() (game_object.GameObject, error) {
		return meshObject(), nil
	}))
	assert.False(t, e.Loop().LoadMesh("again", func() (game_object.GameObject, error) {
		return meshObject(), nil
	}), "one load at a time")

	require.Equal(t, 1, e.loop.assets.Wait(5*time.Second, nil))
	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.True(t, stats.MeshDrawn)
	assert.Empty(t, failures)
}

// saveTriangles writes a GLB holding count separate triangles.
func saveTriangles(t *testing.T, path string, count int) {
	t.Helper()
	doc := gltf.NewDocument()
	var positions [][3]float32
	var indices []uint16
	for i := range count {
		base := uint16(len(positions))
		x := float32(i)
		positions = append(positions, [3]float32{x, 0, 0}, [3]float32{x + 1, 0, 0}, [3]float32{x, 1, 0})
		indices = append(indices, base, base+1, base+2)
	}
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, indices)
	doc.Meshes = []*gltf.Mesh{{
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	require.NoError(t, gltf.SaveBinary(doc, path))
}

func TestLoadModelRereadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.glb")
	saveTriangles(t, path, 1)
	e := newTestEngine(t, &recordingRenderer{}, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)))

	triangles := func() int {
		t.Helper()
		require.Equal(t, 1, e.loop.assets.Wait(5*time.Second, nil))
		obj, ok := e.Scene().MeshSlot().Get()
		require.True(t, ok)
		return obj.Model().Mesh().TriangleCount()
	}

	require.True(t, e.LoadModel(path))
	assert.Equal(t, 1, triangles())

	saveTriangles(t, path, 2)
	require.True(t, e.LoadModel(path))
	assert.Equal(t, 2, triangles(), "a reload must not be served from the model cache")
}

func TestFailedMeshLoadKeepsRendering(t *testing.T) {
	r := &recordingRenderer{}
	var failures []error
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(64, 48)),
		WithOnLoadFailed(func(err error) { failures = append(failures, err) }))

	require.True(t, e.LoadModel("does-not-exist.glb"))

	deadline := time.Now().Add(5 * time.Second)
	for len(failures) == 0 && time.Now().Before(deadline) {
		stats, err := e.Loop().RenderFrame(0)
		require.NoError(t, err)
		assert.False(t, stats.MeshDrawn)
		time.Sleep(5 * time.Millisecond)
	}
	require.Len(t, failures, 1)
	assert.Equal(t, asset.Failed, e.Scene().MeshSlot().State())

	stats, err := e.Loop().RenderFrame(0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Passes, "both passes still run without the mesh")
	assert.False(t, stats.MeshDrawn)
}

func TestRunRendersScriptedFrames(t *testing.T) {
	r := &recordingRenderer{}
	w := window.NewHeadlessWindow(
		window.WithHeadlessSize(800, 600),
		window.WithFrames(3),
		window.WithScrollOffsets(0, 900, 1800),
		window.WithResizes(window.ResizeStep{Frame: 2, Width: 400, Height: 300}),
	)
	var seen []FrameStats
	e := newTestEngine(t, r, w, WithPage(fourSections()), WithProfiling(true),
		WithOnFrame(func(s FrameStats) error {
			seen = append(seen, s)
			return nil
		}))
	resolveMesh(t, e.Scene())

	require.NoError(t, e.Run(context.Background()))
	require.Len(t, seen, 3)
	assert.InDelta(t, 0, seen[0].Scroll.Percentage, 1e-6)
	assert.InDelta(t, 0.5, seen[1].Scroll.Percentage, 1e-6)
	assert.Equal(t, mgl32.Vec2{400, 300}, seen[2].Uniforms.Resolution)
	assert.Equal(t, uint64(3), seen[2].Frame)

	// The fixed clock advances by one step per frame.
	assert.InDelta(t, 3*renderer.DefaultStep, seen[2].Uniforms.Time, 1e-6)
}

func TestRunRestartsTheClock(t *testing.T) {
	clock := renderer.NewClock(renderer.ClockModeFixed)
	clock.Advance(time.Second)
	clock.Advance(time.Second)

	var seen []FrameStats
	e := newTestEngine(t, &recordingRenderer{}, window.NewHeadlessWindow(window.WithFrames(1)),
		WithClock(clock),
		WithOnFrame(func(s FrameStats) error {
			seen = append(seen, s)
			return nil
		}))

	require.NoError(t, e.Run(context.Background()))
	require.Len(t, seen, 1)
	assert.InDelta(t, renderer.DefaultStep, seen[0].Uniforms.Time, 1e-6)
}

func TestRunStopsOnFrameError(t *testing.T) {
	r := &recordingRenderer{failScreen: errors.New("surface lost")}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithFrames(10)))

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surface lost")
	assert.Contains(t, err.Error(), "frame 1")
}

func TestRunRecoversFramePanic(t *testing.T) {
	r := &recordingRenderer{panicOnScreen: true}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithFrames(10)))

	var err error
	require.NotPanics(t, func() { err = e.Run(context.Background()) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
}

func TestRunStopsOnCancelAndQuit(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithFrames(100)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	assert.Zero(t, r.frames)

	r2 := &recordingRenderer{}
	var e2 *engine
	e2 = newTestEngine(t, r2, window.NewHeadlessWindow(window.WithFrames(100)),
		WithOnFrame(func(s FrameStats) error {
			if s.Frame == 2 {
				e2.Quit()
			}
			return nil
		}))
	require.NoError(t, e2.Run(context.Background()))
	assert.Equal(t, uint64(2), r2.frames)
}

func TestKeyboardScrolling(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(800, 600)),
		WithPage(fourSections()))
	s := e.Scroll()

	applyScroll(s, window.ScrollEvent{Kind: window.ScrollPages, Amount: 1}, 600)
	assert.InDelta(t, 600, s.Offset(), 1e-9)
	applyScroll(s, window.ScrollEvent{Kind: window.ScrollLines, Amount: 1}, 600)
	assert.Greater(t, s.Offset(), 600.0, "positive lines scroll down")
	applyScroll(s, window.ScrollEvent{Kind: window.ScrollToEnd}, 600)
	assert.InDelta(t, 1800, s.Offset(), 1e-9)
	applyScroll(s, window.ScrollEvent{Kind: window.ScrollTo, Amount: 0}, 600)
	assert.Zero(t, s.Offset())
}

func TestSoftwareEndToEnd(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware, nil, renderer.WithWorkers(2))
	require.NoError(t, err)
	e := newTestEngine(t, r, window.NewHeadlessWindow(window.WithHeadlessSize(48, 32), window.WithFrames(2)),
		WithPage(fourSections()))
	resolveMesh(t, e.Scene())

	require.NoError(t, e.Run(context.Background()))
	frame, offscreen, err := r.Capture()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 48, 32), frame.Bounds())
	assert.Equal(t, image.Rect(0, 0, 48, 32), offscreen.Bounds())
	assert.Equal(t, uint64(2), r.Frames())
}
