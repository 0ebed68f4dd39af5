package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrEmptyMesh is returned when a mesh has no triangles.
var ErrEmptyMesh = errors.New("model: mesh has no triangles")

// Mesh is an indexed triangle list in model space.
// Normals and UVs are either empty or have one entry per position.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that attribute lengths match and every index is in range.
//
// Returns:
//   - error: nil if the mesh can be drawn
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if m.TriangleCount() == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("model: index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("model: %d normals for %d positions", len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("model: %d uvs for %d positions", len(m.UVs), n)
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("model: index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// EnsureIndices generates a sequential index list for non-indexed geometry.
func (m *Mesh) EnsureIndices() {
	if len(m.Indices) > 0 {
		return
	}
	count := len(m.Positions) - len(m.Positions)%3
	m.Indices = make([]uint32, count)
	for i := range m.Indices {
		m.Indices[i] = uint32(i)
	}
}

// EnsureNormals computes area-weighted vertex normals when the mesh has none.
// Vertices that belong to no triangle get (0,0,1).
func (m *Mesh) EnsureNormals() {
	if len(m.Normals) == len(m.Positions) {
		return
	}
	normals := make([]mgl32.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		// The cross product length is twice the triangle area.
		n := m.Positions[b].Sub(m.Positions[a]).Cross(m.Positions[c].Sub(m.Positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() == 0 {
			normals[i] = mgl32.Vec3{0, 0, 1}
			continue
		}
		normals[i] = n.Normalize()
	}
	m.Normals = normals
}

// Append adds other to m with its positions transformed by xform and its normals by
// the inverse-transpose of xform's upper 3x3.
//
// Parameters:
//   - other: the mesh to append
//   - xform: the node's world matrix
func (m *Mesh) Append(other Mesh, xform mgl32.Mat4) {
	base := uint32(len(m.Positions))
	normalMat := xform.Mat3().Inv().Transpose()

	// Keep attributes aligned if only one side carries them.
	if len(other.UVs) > 0 && len(m.UVs) < len(m.Positions) {
		m.UVs = append(m.UVs, make([]mgl32.Vec2, len(m.Positions)-len(m.UVs))...)
	}
	hadUVs := len(m.UVs) > 0

	for i, p := range other.Positions {
		m.Positions = append(m.Positions, mgl32.TransformCoordinate(p, xform))
		if i < len(other.Normals) {
			n := normalMat.Mul3x1(other.Normals[i])
			if n.Len() > 0 {
				n = n.Normalize()
			}
			m.Normals = append(m.Normals, n)
		}
		if i < len(other.UVs) {
			m.UVs = append(m.UVs, other.UVs[i])
		} else if hadUVs {
			m.UVs = append(m.UVs, mgl32.Vec2{})
		}
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// Bounds returns the axis-aligned bounding box of the positions.
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func (m *Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// BoundingRadius returns the maximum vertex distance from the origin.
func (m *Mesh) BoundingRadius() float32 {
	var r float32
	for _, p := range m.Positions {
		r = max(r, p.Len())
	}
	return r
}

// NewPlane builds a width x height quad in the XY plane facing +Z, centred on the origin.
// UV (0,0) is the top-left corner so image rows map top to bottom.
//
// Parameters:
//   - width: extent along X
//   - height: extent along Y
//
// Returns:
//   - Mesh: four vertices and two counter-clockwise triangles
func NewPlane(width, height float32) Mesh {
	hw, hh := width/2, height/2
	normal := mgl32.Vec3{0, 0, 1}
	return Mesh{
		Positions: []mgl32.Vec3{
			{-hw, hh, 0}, {hw, hh, 0},
			{-hw, -hh, 0}, {hw, -hh, 0},
		},
		Normals: []mgl32.Vec3{normal, normal, normal, normal},
		UVs: []mgl32.Vec2{
			{0, 0}, {1, 0},
			{0, 1}, {1, 1},
		},
		Indices: []uint32{0, 2, 1, 2, 3, 1},
	}
}
