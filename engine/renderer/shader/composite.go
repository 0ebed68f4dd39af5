// Package shader holds the scene's two shader programs: an unlit textured program
// used for the text plane, and the composite program used for the mesh. Each has a
// WGSL source for the GPU backend and, for the composite, a pure Go reference
// evaluated per fragment by the software backend.
package shader

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultBlurSize scales the blur tap offsets before they are divided by the resolution.
const DefaultBlurSize float32 = 0.01

// BlurWeights are the centre tap weight followed by the weights of the three symmetric tap pairs.
// The centre plus two of each pair sum to 1.
var BlurWeights = [4]float32{
	0.1964825501511404,
	0.2969069646728344,
	0.09447039785044732,
	0.010381362401148057,
}

// BlurOffsets are the unscaled offsets of the three tap pairs.
var BlurOffsets = [3]float32{
	1.411764705882353,
	3.294117647058823,
	5.176470588235294,
}

// rimTint is added to the colour in proportion to the fresnel term.
var rimTint = mgl32.Vec3{0.1, 0.1, 0.3}

// Sampler returns the filtered colour of a texture at a normalized coordinate.
// uv (0,0) is the top-left texel.
type Sampler interface {
	Sample(uv mgl32.Vec2) mgl32.Vec4
}

// Params is the per-frame uniform block of the composite program.
type Params struct {
	Resolution mgl32.Vec2
	Time       float32
	BlurSize   float32
}

// Blur13 applies the fixed 7-tap blur around uv. Every tap is offset along the
// (1,1) diagonal by offset*blurSize/resolution, mirroring the GPU program.
//
// Parameters:
//   - s: the texture to blur
//   - uv: the centre coordinate
//   - resolution: the viewport size in pixels
//   - blurSize: tap offset scale
//
// Returns:
//   - mgl32.Vec4: the blurred colour
func Blur13(s Sampler, uv, resolution mgl32.Vec2, blurSize float32) mgl32.Vec4 {
	if resolution.X() <= 0 || resolution.Y() <= 0 {
		return s.Sample(uv)
	}

	color := s.Sample(uv).Mul(BlurWeights[0])
	for i, off := range BlurOffsets {
		d := off * blurSize
		step := mgl32.Vec2{d / resolution.X(), d / resolution.Y()}
		w := BlurWeights[i+1]
		color = color.Add(s.Sample(uv.Add(step)).Mul(w))
		color = color.Add(s.Sample(uv.Sub(step)).Mul(w))
	}
	return color
}

// Fresnel returns (1 - |dot(n, v)|)^2 for the normalized inputs.
// A zero-length normal or view direction yields 0.
//
// Parameters:
//   - normal: the surface normal
//   - viewDir: direction from the surface towards the viewer
//
// Returns:
//   - float32: the fresnel term in [0, 1]
func Fresnel(normal, viewDir mgl32.Vec3) float32 {
	nl, vl := normal.Len(), viewDir.Len()
	if nl == 0 || vl == 0 {
		return 0
	}
	d := math32.Abs(normal.Dot(viewDir) / (nl * vl))
	f := 1 - min(d, 1)
	return f * f
}

// Blend mixes a blurred colour towards white by fresnel*0.9, adds the blue rim
// tint scaled by fresnel, and sets alpha to 0.5 + fresnel*0.3.
//
// Parameters:
//   - blurred: the blurred input colour
//   - fresnel: the fresnel term
//
// Returns:
//   - mgl32.Vec4: the output colour
func Blend(blurred mgl32.Vec4, fresnel float32) mgl32.Vec4 {
	t := fresnel * 0.9
	rgb := blurred.Vec3().Mul(1 - t).Add(mgl32.Vec3{t, t, t})
	rgb = rgb.Add(rimTint.Mul(fresnel))
	return rgb.Vec4(0.5 + fresnel*0.3)
}

// Composite evaluates the composite fragment program at a pixel.
//
// Parameters:
//   - s: the offscreen colour buffer
//   - fragCoord: the pixel centre in framebuffer coordinates
//   - params: the frame uniforms
//   - normal: interpolated view-space normal
//   - viewDir: interpolated direction towards the camera in view space
//
// Returns:
//   - mgl32.Vec4: the fragment colour
func Composite(s Sampler, fragCoord mgl32.Vec2, params Params, normal, viewDir mgl32.Vec3) mgl32.Vec4 {
	var uv mgl32.Vec2
	if params.Resolution.X() > 0 && params.Resolution.Y() > 0 {
		uv = mgl32.Vec2{fragCoord.X() / params.Resolution.X(), fragCoord.Y() / params.Resolution.Y()}
	}
	blurred := Blur13(s, uv, params.Resolution, params.BlurSize)
	return Blend(blurred, Fresnel(normal, viewDir))
}
