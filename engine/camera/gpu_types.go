package camera

import (
	"unsafe"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer
// bound at group 0 by both programs.
// Size: 128 bytes.
type GPUCameraUniform struct {
	View       mgl32.Mat4 // offset  0: world-to-view (mat4x4<f32>)
	Projection mgl32.Mat4 // offset 64: view-to-clip (mat4x4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.View[:]...)
	common.PutFloat32s(buf, off, g.Projection[:]...)
	return buf
}
