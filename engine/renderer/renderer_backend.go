package renderer

import (
	"fmt"
	"image"
	"strings"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend drawing to a window surface.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU rasterizer. It needs no window and
	// its frames can be read back with Renderer.Capture.
	BackendTypeSoftware
)

// String returns the backend name used in configuration files and flags.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a backend name onto a RendererBackendType.
//
// Parameters:
//   - name: "wgpu" or "software", case insensitive
//
// Returns:
//   - RendererBackendType: the backend type
//   - error: an error if the name is not recognised
func ParseBackendType(name string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wgpu", "gpu":
		return BackendTypeWGPU, nil
	case "software", "cpu":
		return BackendTypeSoftware, nil
	default:
		return 0, fmt.Errorf("unknown renderer backend %q", name)
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RendererBackend is the set of operations a backend provides to the Renderer.
// The Renderer enforces pass ordering; backends only draw what they are given.
type RendererBackend interface {
	// Configure (re)creates the screen and offscreen targets at the given size.
	Configure(width, height int) error

	// UploadText replaces the texture sampled by the basic program.
	UploadText(tex common.TextureStagingData) error

	// DrawOffscreen clears the offscreen target and draws the snapshot into it.
	DrawOffscreen(snap scene.Snapshot) error

	// DrawScreen clears the screen target and draws the snapshot. The composite
	// program samples the offscreen target when inputIsOffscreen is set and the
	// text texture otherwise.
	DrawScreen(snap scene.Snapshot, params shader.Params, inputIsOffscreen bool) error

	// Present shows the screen target.
	Present() error

	// Release frees every resource the backend holds.
	Release()
}

// frameReader is implemented by backends whose targets can be read back.
type frameReader interface {
	Frame() *image.RGBA
	Offscreen() *image.RGBA
}
