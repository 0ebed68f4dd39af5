package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PutFloat32s writes values into dst as little-endian float32s starting at offset.
// Used when packing uniform blocks whose layout must not depend on host struct padding.
//
// Parameters:
//   - dst: destination buffer, must have room for len(values)*4 bytes past offset
//   - offset: byte offset into dst
//   - values: the floats to write
//
// Returns:
//   - int: the byte offset just past the last written value
func PutFloat32s(dst []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(dst[offset:], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// Perspective creates a right-handed perspective projection matrix that maps
// view-space depth into the WebGPU clip range [0, 1].
// mgl32.Perspective targets the OpenGL [-1, 1] range, so it is not used here.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a view matrix for a camera at eye looking at center.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector (typically +Y)
//
// Returns:
//   - mgl32.Mat4: the column-major view matrix
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	if eye.ApproxEqual(center) {
		return mgl32.Translate3D(-eye.X(), -eye.Y(), -eye.Z())
	}
	return mgl32.LookAtV(eye, center, up)
}

// ModelMatrix composes translation, Euler rotation and uniform scale into a model matrix.
// Rotation order is X then Y then Z applied intrinsically (R = Rx * Ry * Rz),
// matching how scene objects describe their orientation.
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around X, Y and Z
//   - scale: scale factors along X, Y and Z
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DX(rotation.X()).
		Mul4(mgl32.HomogRotate3DY(rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of a model-view matrix.
// A singular input yields the plain upper 3x3.
//
// Parameters:
//   - modelView: the combined model-view matrix
//
// Returns:
//   - mgl32.Mat3: matrix transforming object-space normals into view space
func NormalMatrix(modelView mgl32.Mat4) mgl32.Mat3 {
	m := modelView.Mat3()
	if m.Det() == 0 {
		return m
	}
	return m.Inv().Transpose()
}
