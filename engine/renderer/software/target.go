package software

import (
	"image"
	"math"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// target is a colour and depth buffer pair. Colours are stored as floats in
// [0, 1]. Cleared to transparent black and blended with straight-alpha
// factors, the stored rgb ends up premultiplied by alpha, which is also what
// an RGBA8 render target holds on the GPU.
type target struct {
	width, height int
	color         []mgl32.Vec4
	depth         []float32
}

func newTarget(width, height int) *target {
	t := &target{width: width, height: height}
	t.color = make([]mgl32.Vec4, width*height)
	t.depth = make([]float32, width*height)
	t.clear()
	return t
}

func (t *target) clear() {
	clear(t.color)
	for i := range t.depth {
		t.depth[i] = 1
	}
}

// blend applies colour SRC_ALPHA/ONE_MINUS_SRC_ALPHA and alpha
// ONE/ONE_MINUS_SRC_ALPHA at pixel i.
func (t *target) blend(i int, src mgl32.Vec4) {
	for c := range 4 {
		src[c] = common.Clamp(src[c], 0, 1)
	}
	dst := t.color[i]
	a := src[3]
	t.color[i] = mgl32.Vec4{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		a + dst[3]*(1-a),
	}
}

// image converts the colour buffer into an 8-bit premultiplied image.
func (t *target) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for i, c := range t.color {
		o := i * 4
		for ch := range 4 {
			img.Pix[o+ch] = toByte(c[ch])
		}
		// Rounding can push a channel past alpha; image.RGBA requires c <= a.
		for ch := range 3 {
			img.Pix[o+ch] = min(img.Pix[o+ch], img.Pix[o+3])
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(common.Clamp(v, 0, 1)) * 255))
}
