package renderer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	calls    []string
	uploads  []uint64
	params   []shader.Params
	inputs   []bool
	released bool
	failNext error
}

func (f *fakeBackend) Configure(width, height int) error {
	f.calls = append(f.calls, "configure")
	return f.fail()
}

func (f *fakeBackend) UploadText(tex common.TextureStagingData) error {
	f.calls = append(f.calls, "upload")
	f.uploads = append(f.uploads, tex.Version)
	return f.fail()
}

func (f *fakeBackend) DrawOffscreen(snap scene.Snapshot) error {
	f.calls = append(f.calls, "offscreen")
	return f.fail()
}

func (f *fakeBackend) DrawScreen(snap scene.Snapshot, params shader.Params, inputIsOffscreen bool) error {
	f.calls = append(f.calls, "screen")
	f.params = append(f.params, params)
	f.inputs = append(f.inputs, inputIsOffscreen)
	return f.fail()
}

func (f *fakeBackend) Present() error {
	f.calls = append(f.calls, "present")
	return f.fail()
}

func (f *fakeBackend) Release() {
	f.released = true
}

func (f *fakeBackend) fail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func newFakeRenderer(t *testing.T, options ...RendererBuilderOption) (Renderer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	r, err := NewRenderer(BackendTypeSoftware, nil, append([]RendererBuilderOption{WithBackend(fb)}, options...)...)
	require.NoError(t, err)
	return r, fb
}

func compositeSnapshot() scene.Snapshot {
	return scene.Snapshot{Objects: []scene.Object{{
		ID:      7,
		Program: shader.ProgramComposite,
		Model:   model.NewModel(model.WithMesh(model.NewPlane(1, 1))),
		World:   mgl32.Ident4(),
	}}}
}

func TestDrawCallsNeedASize(t *testing.T) {
	r, fb := newFakeRenderer(t)

	assert.ErrorIs(t, r.RenderOffscreen(scene.Snapshot{}), ErrNotConfigured)
	assert.ErrorIs(t, r.RenderScreen(scene.Snapshot{}, Uniforms{}), ErrNotConfigured)
	assert.ErrorIs(t, r.Present(), ErrNotConfigured)
	assert.Empty(t, fb.calls)

	require.NoError(t, r.Resize(32, 16))
	w, h := r.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)
	assert.NoError(t, r.RenderOffscreen(scene.Snapshot{}))
}

func TestWithSizeConfiguresOnCreation(t *testing.T) {
	_, fb := newFakeRenderer(t, WithSize(8, 8))
	assert.Equal(t, []string{"configure"}, fb.calls)
}

func TestResizeIgnoresInvalidAndUnchangedSizes(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))

	require.NoError(t, r.Resize(0, 10))
	require.NoError(t, r.Resize(10, -1))
	require.NoError(t, r.Resize(8, 8))
	assert.Equal(t, []string{"configure"}, fb.calls)

	fb.failNext = errors.New("out of memory")
	assert.Error(t, r.Resize(16, 16))
	w, h := r.Size()
	assert.Equal(t, 8, w, "a failed resize keeps the old size")
	assert.Equal(t, 8, h)
}

func TestScreenPassNeedsOffscreenPassThisFrame(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))
	uniforms := Uniforms{InputIsOffscreen: true}

	assert.ErrorIs(t, r.RenderScreen(compositeSnapshot(), uniforms), ErrNoOffscreenPass)

	require.NoError(t, r.RenderOffscreen(scene.Snapshot{}))
	require.NoError(t, r.RenderScreen(compositeSnapshot(), uniforms))
	require.NoError(t, r.Present())
	assert.Equal(t, uint64(1), r.Frames())

	// The offscreen target belongs to the presented frame.
	assert.ErrorIs(t, r.RenderScreen(compositeSnapshot(), uniforms), ErrNoOffscreenPass)

	// Sampling the text texture does not need an offscreen pass.
	require.NoError(t, r.RenderScreen(compositeSnapshot(), Uniforms{}))
	assert.Equal(t, []bool{true, false}, fb.inputs)
}

func TestResizeInvalidatesOffscreenPass(t *testing.T) {
	r, _ := newFakeRenderer(t, WithSize(8, 8))

	require.NoError(t, r.RenderOffscreen(scene.Snapshot{}))
	require.NoError(t, r.Resize(16, 16))
	assert.ErrorIs(t, r.RenderScreen(compositeSnapshot(), Uniforms{InputIsOffscreen: true}), ErrNoOffscreenPass)
}

func TestOffscreenPassRejectsCompositeObjects(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))

	assert.ErrorIs(t, r.RenderOffscreen(compositeSnapshot()), ErrCompositeOffscreen)
	assert.NotContains(t, fb.calls, "offscreen")
}

func TestPresentWithoutScreenPassIsANoOp(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))

	require.NoError(t, r.RenderOffscreen(scene.Snapshot{}))
	require.NoError(t, r.Present())
	assert.Zero(t, r.Frames())
	assert.NotContains(t, fb.calls, "present")
}

func TestUploadTextSkipsUnchangedVersion(t *testing.T) {
	r, fb := newFakeRenderer(t)

	uploaded, err := r.UploadText(common.TextureStagingData{Version: 0})
	require.NoError(t, err)
	assert.True(t, uploaded, "the first upload always happens")

	uploaded, err = r.UploadText(common.TextureStagingData{Version: 0})
	require.NoError(t, err)
	assert.False(t, uploaded)

	uploaded, err = r.UploadText(common.TextureStagingData{Version: 1})
	require.NoError(t, err)
	assert.True(t, uploaded)
	assert.Equal(t, []uint64{0, 1}, fb.uploads)

	fb.failNext = errors.New("device lost")
	_, err = r.UploadText(common.TextureStagingData{Version: 2})
	require.Error(t, err)

	// A failed upload is retried on the next call.
	uploaded, err = r.UploadText(common.TextureStagingData{Version: 2})
	require.NoError(t, err)
	assert.True(t, uploaded)
}

func TestRenderScreenPassesDefaultBlurSize(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))

	require.NoError(t, r.RenderScreen(scene.Snapshot{}, Uniforms{Time: 2, Resolution: mgl32.Vec2{8, 8}}))
	require.Len(t, fb.params, 1)
	assert.Equal(t, shader.DefaultBlurSize, fb.params[0].BlurSize)
	assert.Equal(t, float32(2), fb.params[0].Time)
}

func TestCloseReleasesBackendOnce(t *testing.T) {
	r, fb := newFakeRenderer(t, WithSize(8, 8))

	r.Close()
	r.Close()
	assert.True(t, fb.released)

	assert.ErrorIs(t, r.Resize(16, 16), ErrClosed)
	assert.ErrorIs(t, r.RenderOffscreen(scene.Snapshot{}), ErrClosed)
	assert.ErrorIs(t, r.Present(), ErrClosed)
	_, err := r.UploadText(common.TextureStagingData{})
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = r.Capture()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCaptureNeedsAReadableBackend(t *testing.T) {
	r, _ := newFakeRenderer(t, WithSize(8, 8))
	_, _, err := r.Capture()
	assert.ErrorIs(t, err, ErrCaptureUnsupported)
}

func TestSoftwareRendererCapturesBothTargets(t *testing.T) {
	r, err := NewRenderer(BackendTypeSoftware, nil, WithSize(16, 16), WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(r.Close)
	assert.Equal(t, BackendTypeSoftware, r.BackendType())

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	_, err = r.UploadText(common.NewTextureStagingData(img, 1))
	require.NoError(t, err)

	require.NoError(t, r.RenderOffscreen(scene.Snapshot{}))
	require.NoError(t, r.RenderScreen(scene.Snapshot{}, Uniforms{InputIsOffscreen: true}))
	require.NoError(t, r.Present())

	frame, offscreen, err := r.Capture()
	require.NoError(t, err)
	require.NotNil(t, frame)
	require.NotNil(t, offscreen)
	assert.Equal(t, image.Rect(0, 0, 16, 16), frame.Bounds())
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(8, 8), "an empty scene clears to transparent")
}

func TestWGPURendererNeedsSurface(t *testing.T) {
	_, err := NewRenderer(BackendTypeWGPU, nil)
	assert.Error(t, err)
}

func TestUnknownBackendType(t *testing.T) {
	_, err := NewRenderer(RendererBackendType(9), nil)
	assert.Error(t, err)
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		in      string
		want    RendererBackendType
		wantErr bool
	}{
		{"wgpu", BackendTypeWGPU, false},
		{" GPU ", BackendTypeWGPU, false},
		{"software", BackendTypeSoftware, false},
		{"cpu", BackendTypeSoftware, false},
		{"vulkan", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackendType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseBackend(t, got.String()))
		})
	}
}

func mustParseBackend(t *testing.T, name string) RendererBackendType {
	t.Helper()
	got, err := ParseBackendType(name)
	require.NoError(t, err)
	return got
}

func TestMarshalParamsLayout(t *testing.T) {
	buf := marshalParams(shader.Params{Resolution: mgl32.Vec2{800, 600}, Time: 1.5, BlurSize: 0.02})
	require.Len(t, buf, shader.ParamsUniformSize)

	want := make([]byte, shader.ParamsUniformSize)
	common.PutFloat32s(want, 0, 800, 600, 1.5, 0.02)
	assert.Equal(t, want, buf)
}

type releaseCounter struct {
	released int
}

func (r *releaseCounter) Release() {
	r.released++
}

func TestPruneObjectsReleasesReplacedMesh(t *testing.T) {
	text, oldMesh, newMesh := &releaseCounter{}, &releaseCounter{}, &releaseCounter{}
	cache := map[uint64]*releaseCounter{1: text, 2: oldMesh, 3: newMesh}

	// The mesh object 2 was replaced by object 3.
	removed := pruneObjects(cache, []scene.Object{{ID: 1}, {ID: 3}})

	assert.Equal(t, []uint64{2}, removed)
	assert.Equal(t, 1, oldMesh.released)
	assert.Zero(t, text.released)
	assert.Zero(t, newMesh.released)
	assert.Len(t, cache, 2)
	assert.NotContains(t, cache, uint64(2))

	assert.Empty(t, pruneObjects(cache, []scene.Object{{ID: 1}, {ID: 3}}))
	assert.Equal(t, []uint64{1, 3}, pruneObjects(cache, nil))
	assert.Empty(t, cache)
}
