package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	x, y, z := c.Position()
	assert.Equal(t, [3]float32{0, 0, 15}, [3]float32{x, y, z})
	assert.InDelta(t, 75*math32.Pi/180, c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(1000), c.Far())

	// The origin is 15 units in front of the camera.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -15, p.Z(), 1e-5)
}

func TestProjectionDepthRange(t *testing.T) {
	c := NewCamera()
	vp := c.ViewProjectionMatrix()

	near := vp.Mul4x1(mgl32.Vec4{0, 0, 15 - c.Near(), 1})
	far := vp.Mul4x1(mgl32.Vec4{0, 0, 15 - c.Far(), 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestSetViewportUpdatesAspect(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.SetViewport(1024, 768)
	assert.InDelta(t, 1024.0/768.0, c.Aspect(), 1e-6)
	assert.NotEqual(t, before, c.ProjectionMatrix())

	c.SetViewport(800, 0)
	assert.InDelta(t, 1024.0/768.0, c.Aspect(), 1e-6)
	c.SetAspect(-1)
	assert.InDelta(t, 1024.0/768.0, c.Aspect(), 1e-6)
}

func TestOptions(t *testing.T) {
	c := NewCamera(
		WithPosition(0, 0, 5),
		WithTarget(0, 0, -1),
		WithUp(0, 1, 0),
		WithFov(math32.Pi/2),
		WithAspect(2),
		WithNear(1),
		WithFar(10),
	)
	tx, ty, tz := c.Target()
	assert.Equal(t, [3]float32{0, 0, -1}, [3]float32{tx, ty, tz})
	assert.Equal(t, float32(2), c.Aspect())

	// With a 90 degree fov the focal length is 1, so x is divided by the aspect.
	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{1, 0, 4, 1})
	assert.InDelta(t, 0.5, clip.X()/clip.W(), 1e-5)
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera()
	u := c.Uniform()

	assert.Equal(t, 128, u.Size())
	buf := u.Marshal()
	assert.Len(t, buf, 128)
	assert.Equal(t, c.ViewMatrix(), u.View)
}
