// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data pending upload to a renderer.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Version increases every time the source pixels change. Renderers compare it
	// against the last uploaded version to decide whether a re-upload is needed.
	Version uint64
}

// NewTextureStagingData copies any image into tightly packed RGBA staging data.
// *image.RGBA inputs whose stride equals the row width are copied without conversion.
//
// Parameters:
//   - img: the source image
//   - version: the content version to stamp on the staging data
//
// Returns:
//   - TextureStagingData: the staged pixels
func NewTextureStagingData(img image.Image, version uint64) TextureStagingData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != w*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	pixels := make([]byte, len(rgba.Pix))
	copy(pixels, rgba.Pix)
	return TextureStagingData{
		Pixels:  pixels,
		Width:   uint32(w),
		Height:  uint32(h),
		Version: version,
	}
}

// Image wraps the staged pixels in an *image.RGBA without copying.
//
// Returns:
//   - *image.RGBA: an image sharing memory with Pixels
func (t TextureStagingData) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Pixels,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to linear filtering with clamp-to-edge addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
