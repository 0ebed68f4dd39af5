package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertex is the interleaved vertex layout consumed by both render programs.
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	g.put(buf)
	return buf
}

func (g *GPUVertex) put(buf []byte) {
	vals := [8]float32{
		g.Position[0], g.Position[1], g.Position[2],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.TexCoord[0], g.TexCoord[1],
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// PackVertices interleaves a mesh into GPUVertex records.
// Missing normals or UVs are written as zero.
//
// Parameters:
//   - m: the mesh to pack
//
// Returns:
//   - []byte: VertexCount()*32 bytes
func PackVertices(m *Mesh) []byte {
	var v GPUVertex
	stride := v.Size()
	buf := make([]byte, len(m.Positions)*stride)
	for i, p := range m.Positions {
		v = GPUVertex{Position: p}
		if i < len(m.Normals) {
			v.Normal = m.Normals[i]
		}
		if i < len(m.UVs) {
			v.TexCoord = m.UVs[i]
		}
		v.put(buf[i*stride:])
	}
	return buf
}

// PackIndices serializes the index list as little-endian uint32 values.
//
// Parameters:
//   - m: the mesh to pack
//
// Returns:
//   - []byte: len(Indices)*4 bytes
func PackIndices(m *Mesh) []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
