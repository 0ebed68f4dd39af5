package shader

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BufferSampler samples a float colour buffer with bilinear filtering and
// clamp-to-edge addressing.
type BufferSampler struct {
	width, height int
	pixels        []mgl32.Vec4
}

var _ Sampler = &BufferSampler{}

// NewBufferSampler wraps a row-major colour buffer without copying.
//
// Parameters:
//   - width, height: buffer size in pixels
//   - pixels: width*height colours
//
// Returns:
//   - *BufferSampler: the sampler
func NewBufferSampler(width, height int, pixels []mgl32.Vec4) *BufferSampler {
	return &BufferSampler{width: width, height: height, pixels: pixels}
}

// NewImageSampler converts an image into straight-alpha float colours.
//
// Parameters:
//   - img: the source image (premultiplied images are un-premultiplied)
//
// Returns:
//   - *BufferSampler: the sampler
func NewImageSampler(img image.Image) *BufferSampler {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]mgl32.Vec4, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			pixels[y*w+x] = mgl32.Vec4{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			}
		}
	}
	return NewBufferSampler(w, h, pixels)
}

// Size returns the sampled buffer dimensions.
func (s *BufferSampler) Size() (int, int) {
	return s.width, s.height
}

// Sample returns the bilinearly filtered colour at uv.
func (s *BufferSampler) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if s.width == 0 || s.height == 0 || len(s.pixels) < s.width*s.height {
		return mgl32.Vec4{}
	}

	// Texel centres sit at half-integer coordinates.
	fx := uv.X()*float32(s.width) - 0.5
	fy := uv.Y()*float32(s.height) - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	ix, iy := int(x0), int(y0)
	c00 := s.texel(ix, iy)
	c10 := s.texel(ix+1, iy)
	c01 := s.texel(ix, iy+1)
	c11 := s.texel(ix+1, iy+1)

	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

// texel returns the colour at integer coordinates clamped to the buffer edge.
func (s *BufferSampler) texel(x, y int) mgl32.Vec4 {
	x = max(0, min(x, s.width-1))
	y = max(0, min(y, s.height-1))
	return s.pixels[y*s.width+x]
}
