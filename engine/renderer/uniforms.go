package renderer

import (
	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms are the per-frame inputs of the composite program.
type Uniforms struct {
	// Time is the elapsed shader time produced by a Clock.
	Time float32
	// Resolution is the viewport size in pixels.
	Resolution mgl32.Vec2
	// BlurSize scales the blur tap offsets. Zero selects shader.DefaultBlurSize.
	BlurSize float32
	// InputIsOffscreen makes the composite program sample this frame's
	// offscreen target. When false it samples the text texture instead.
	InputIsOffscreen bool
}

// Params converts the uniforms into the composite program's uniform block.
//
// Returns:
//   - shader.Params: the uniform block
func (u Uniforms) Params() shader.Params {
	return shader.Params{
		Resolution: u.Resolution,
		Time:       u.Time,
		BlurSize:   common.Coalesce(u.BlurSize, shader.DefaultBlurSize),
	}
}

// marshalParams packs a uniform block in the WGSL Params layout:
// resolution (vec2), time, blur_size.
func marshalParams(p shader.Params) []byte {
	buf := make([]byte, shader.ParamsUniformSize)
	common.PutFloat32s(buf, 0, p.Resolution.X(), p.Resolution.Y(), p.Time, p.BlurSize)
	return buf
}
