package software

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/camera"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const size = 64

func solidTexture(c color.NRGBA) common.TextureStagingData {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.SetNRGBA(x, y, c)
		}
	}
	return common.NewTextureStagingData(img, 1)
}

func snapshotOf(objs ...scene.Object) scene.Snapshot {
	cam := camera.NewCamera(camera.WithAspect(1))
	x, y, z := cam.Position()
	return scene.Snapshot{
		View:           cam.ViewMatrix(),
		Projection:     cam.ProjectionMatrix(),
		CameraPosition: mgl32.Vec3{x, y, z},
		Objects:        objs,
	}
}

func planeObject(program shader.ProgramKind, w, h float32, world mgl32.Mat4) scene.Object {
	return scene.Object{
		ID:      1,
		Program: program,
		Model:   model.NewModel(model.WithMesh(model.NewPlane(w, h))),
		World:   world,
	}
}

func textPlane() scene.Object {
	return planeObject(shader.ProgramBasic, 20, 20, mgl32.Translate3D(0, 0, scene.PlaneDepth))
}

func newBackend(t *testing.T, options ...BackendBuilderOption) *Backend {
	t.Helper()
	b := NewBackend(options...)
	require.NoError(t, b.Configure(size, size))
	t.Cleanup(b.Release)
	return b
}

func TestBackendRequiresConfigure(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.DrawOffscreen(snapshotOf()), ErrNotConfigured)
	assert.ErrorIs(t, b.DrawScreen(snapshotOf(), shader.Params{}, true), ErrNotConfigured)
	assert.ErrorIs(t, b.Present(), ErrNotConfigured)
	assert.Nil(t, b.Frame())
	assert.Nil(t, b.Offscreen())

	assert.Error(t, b.Configure(0, 10))
}

func TestUploadTextRejectsShortPixels(t *testing.T) {
	b := newBackend(t)
	err := b.UploadText(common.TextureStagingData{Pixels: make([]byte, 3), Width: 2, Height: 2, Version: 4})
	assert.Error(t, err)

	require.NoError(t, b.UploadText(solidTexture(color.NRGBA{R: 255, A: 255})))
	assert.Equal(t, uint64(1), b.textVersion)
}

func TestTextPlaneDrawsTextureAndLeavesBackgroundTransparent(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.UploadText(solidTexture(color.NRGBA{R: 255, A: 255})))

	require.NoError(t, b.DrawScreen(snapshotOf(textPlane()), shader.Params{}, false))
	require.NoError(t, b.Present())

	frame := b.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, frame.RGBAAt(size/2, size/2))
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(0, 0), "the plane does not reach the corners")
}

func TestTextPlaneIsBackFaceCulled(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.UploadText(solidTexture(color.NRGBA{R: 255, A: 255})))

	flipped := planeObject(shader.ProgramBasic, 20, 20, mgl32.HomogRotate3DY(math32.Pi))
	require.NoError(t, b.DrawScreen(snapshotOf(flipped), shader.Params{}, false))
	require.NoError(t, b.Present())
	assert.Equal(t, color.RGBA{}, b.Frame().RGBAAt(size/2, size/2))
}

func TestSharedEdgesAreBlendedOnce(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.UploadText(solidTexture(color.NRGBA{R: 255, A: 128})))

	require.NoError(t, b.DrawScreen(snapshotOf(textPlane()), shader.Params{}, false))
	require.NoError(t, b.Present())

	frame := b.Frame()
	for y := range size {
		for x := range size {
			a := frame.RGBAAt(x, y).A
			assert.Contains(t, []uint8{0, 128}, a, "pixel %d,%d", x, y)
		}
	}
}

func TestCompositeSamplesOffscreenTarget(t *testing.T) {
	params := shader.Params{Resolution: mgl32.Vec2{size, size}, BlurSize: shader.DefaultBlurSize}
	mesh := planeObject(shader.ProgramComposite, 4, 4, mgl32.Ident4())

	tests := []struct {
		name             string
		offscreen        scene.Snapshot
		inputIsOffscreen bool
		want             color.RGBA
	}{
		{"offscreen holds the text plane", snapshotOf(textPlane()), true, color.RGBA{R: 128, A: 128}},
		{"offscreen is empty", snapshotOf(), true, color.RGBA{A: 128}},
		{"text texture as input", snapshotOf(), false, color.RGBA{R: 128, A: 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			require.NoError(t, b.UploadText(solidTexture(color.NRGBA{R: 255, A: 255})))

			require.NoError(t, b.DrawOffscreen(tt.offscreen))
			require.NoError(t, b.DrawScreen(snapshotOf(mesh), params, tt.inputIsOffscreen))
			require.NoError(t, b.Present())
			assert.Equal(t, tt.want, b.Frame().RGBAAt(size/2, size/2))
		})
	}
}

func TestCompositeIsDoubleSidedAndAddsRimAtGrazingAngles(t *testing.T) {
	params := shader.Params{Resolution: mgl32.Vec2{size, size}, BlurSize: shader.DefaultBlurSize}
	b := newBackend(t)
	require.NoError(t, b.DrawOffscreen(snapshotOf()))

	back := planeObject(shader.ProgramComposite, 4, 4, mgl32.HomogRotate3DY(math32.Pi))
	require.NoError(t, b.DrawScreen(snapshotOf(back), params, true))
	require.NoError(t, b.Present())
	assert.Equal(t, uint8(128), b.Frame().RGBAAt(size/2, size/2).A)

	tilted := planeObject(shader.ProgramComposite, 4, 4, mgl32.HomogRotate3DY(1.3))
	require.NoError(t, b.DrawScreen(snapshotOf(tilted), params, true))
	require.NoError(t, b.Present())
	c := b.Frame().RGBAAt(size/2, size/2)
	assert.Greater(t, c.A, uint8(128), "fresnel raises alpha towards 0.8")
	assert.Greater(t, c.B, c.R, "the rim tint is blue")
}

func TestOnlyBasicProgramWritesDepth(t *testing.T) {
	snap := snapshotOf()
	tgt := newTarget(size, size)
	in := fragmentInputs{text: shader.NewBufferSampler(1, 1, []mgl32.Vec4{{1, 1, 1, 1}})}
	in.input = in.text

	composite := setupDraw(planeObject(shader.ProgramComposite, 4, 4, mgl32.Ident4()), &snap, size, size)
	assert.False(t, composite.depthWrite)
	rasterize(tgt, composite, in, 0, size)
	assert.Equal(t, float32(1), tgt.depth[size/2*size+size/2])

	basic := setupDraw(planeObject(shader.ProgramBasic, 4, 4, mgl32.Ident4()), &snap, size, size)
	assert.True(t, basic.depthWrite)
	rasterize(tgt, basic, in, 0, size)
	assert.Less(t, tgt.depth[size/2*size+size/2], float32(1))
}

func TestClipNearSplitsCrossingTriangle(t *testing.T) {
	in := []vertex{
		{clip: mgl32.Vec4{0, 0, 1, 2}},
		{clip: mgl32.Vec4{1, 0, 1, 2}},
		{clip: mgl32.Vec4{0, 1, -1, 0.5}},
	}
	out := clipNear(in)
	require.Len(t, out, 4)
	for _, v := range out {
		assert.GreaterOrEqual(t, v.clip.Z(), float32(0))
	}

	assert.Empty(t, clipNear([]vertex{
		{clip: mgl32.Vec4{0, 0, -1, 1}},
		{clip: mgl32.Vec4{1, 0, -1, 1}},
		{clip: mgl32.Vec4{0, 1, -1, 1}},
	}))
}

func TestBandingDoesNotChangeOutput(t *testing.T) {
	render := func(options ...BackendBuilderOption) *image.RGBA {
		b := newBackend(t, options...)
		require.NoError(t, b.UploadText(solidTexture(color.NRGBA{G: 200, A: 180})))
		require.NoError(t, b.DrawOffscreen(snapshotOf(textPlane())))
		mesh := planeObject(shader.ProgramComposite, 6, 6, mgl32.HomogRotate3DX(0.7))
		params := shader.Params{Resolution: mgl32.Vec2{size, size}, BlurSize: shader.DefaultBlurSize}
		require.NoError(t, b.DrawScreen(snapshotOf(textPlane(), mesh), params, true))
		require.NoError(t, b.Present())
		return b.Frame()
	}

	serial := render(WithWorkers(1), WithBandHeight(size))
	parallel := render(WithWorkers(4), WithBandHeight(3))
	assert.Equal(t, serial.Pix, parallel.Pix)
}

func TestOffscreenReadback(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.UploadText(solidTexture(color.NRGBA{B: 255, A: 255})))
	require.NoError(t, b.DrawOffscreen(snapshotOf(textPlane())))

	off := b.Offscreen()
	require.NotNil(t, off)
	assert.Equal(t, image.Rect(0, 0, size, size), off.Bounds())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, off.RGBAAt(size/2, size/2))
}
