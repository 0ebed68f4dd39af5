package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() Mesh {
	return Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
}

func TestEnsureIndicesAndNormals(t *testing.T) {
	m := triangle()
	m.EnsureIndices()
	m.EnsureNormals()

	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	require.Len(t, m.Normals, 3)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Z(), 1e-6)
	}
	assert.NoError(t, m.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh Mesh
		ok   bool
	}{
		{"empty", Mesh{}, false},
		{"index out of range", Mesh{Positions: []mgl32.Vec3{{}, {}, {}}, Indices: []uint32{0, 1, 3}}, false},
		{"normal count mismatch", Mesh{Positions: []mgl32.Vec3{{}, {}, {}}, Normals: []mgl32.Vec3{{}}, Indices: []uint32{0, 1, 2}}, false},
		{"plane", NewPlane(2, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
	empty := Mesh{}
	assert.ErrorIs(t, empty.Validate(), ErrEmptyMesh)
}

func TestNewPlane(t *testing.T) {
	p := NewPlane(20, 15)
	lo, hi := p.Bounds()

	assert.Equal(t, mgl32.Vec3{-10, -7.5, 0}, lo)
	assert.Equal(t, mgl32.Vec3{10, 7.5, 0}, hi)
	assert.Equal(t, 2, p.TriangleCount())
	assert.Equal(t, mgl32.Vec2{0, 0}, p.UVs[0], "top-left vertex samples the first image row")

	// Counter-clockwise winding faces +Z.
	a, b, c := p.Positions[p.Indices[0]], p.Positions[p.Indices[1]], p.Positions[p.Indices[2]]
	assert.Positive(t, b.Sub(a).Cross(c.Sub(a)).Z())
}

func TestAppendTransformsAndOffsetsIndices(t *testing.T) {
	var merged Mesh
	tri := triangle()
	tri.EnsureIndices()
	tri.EnsureNormals()

	merged.Append(tri, mgl32.Ident4())
	merged.Append(tri, mgl32.Translate3D(0, 0, 5).Mul4(mgl32.HomogRotate3DY(math.Pi)))

	require.Equal(t, 6, merged.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, merged.Indices)
	assert.InDelta(t, 5, merged.Positions[3].Z(), 1e-6)
	assert.InDelta(t, -1, merged.Positions[4].X(), 1e-6)
	assert.InDelta(t, -1, merged.Normals[3].Z(), 1e-6)
	assert.NoError(t, merged.Validate())
}

func TestAppendPadsMissingUVs(t *testing.T) {
	var merged Mesh
	noUV := triangle()
	noUV.EnsureIndices()
	withUV := triangle()
	withUV.EnsureIndices()
	withUV.UVs = []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}

	merged.Append(noUV, mgl32.Ident4())
	merged.Append(withUV, mgl32.Ident4())

	require.Len(t, merged.UVs, 6)
	assert.Equal(t, mgl32.Vec2{1, 0}, merged.UVs[4])
}

func TestPackVertices(t *testing.T) {
	m := NewPlane(2, 2)
	buf := PackVertices(&m)

	var v GPUVertex
	require.Equal(t, 32, v.Size())
	require.Len(t, buf, 4*32)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	// second vertex: (1, 1, 0), normal +Z, uv (1, 0)
	assert.Equal(t, float32(1), f(32))
	assert.Equal(t, float32(1), f(36))
	assert.Equal(t, float32(1), f(32+20))
	assert.Equal(t, float32(1), f(32+24))
	assert.Equal(t, float32(0), f(32+28))
}

func TestNewModelPacksBuffers(t *testing.T) {
	mdl := NewModel(WithName("tri"), WithMesh(triangle()))

	assert.Equal(t, "tri", mdl.Name())
	assert.Equal(t, 3, mdl.IndexCount())
	assert.Len(t, mdl.IndexData(), 12)
	assert.Len(t, mdl.VertexData(), 96)
	assert.InDelta(t, 1, mdl.BoundingRadius(), 1e-6)
	assert.Nil(t, mdl.BaseColor())

	custom := NewModel(WithMesh(triangle()), WithBoundingRadius(9))
	assert.Equal(t, float32(9), custom.BoundingRadius())
}
