package model

import "github.com/Carmen-Shannon/scrollscene/common"

// model is the implementation of the Model interface.
type model struct {
	name           string
	mesh           Mesh
	baseColor      *common.TextureStagingData
	boundingRadius float32
	vertexData     []byte
	indexData      []byte
}

// Model defines the interface for a loaded 3D model.
// A Model is an immutable, GPU-ready container holding a single merged mesh,
// its packed vertex and index buffers, and the optional base colour texture
// imported from the model file.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Mesh retrieves the merged model-space mesh.
	//
	// Returns:
	//   - *Mesh: the mesh (callers must not modify it)
	Mesh() *Mesh

	// BaseColor retrieves the base colour texture imported with the model, if any.
	//
	// Returns:
	//   - *common.TextureStagingData: the texture or nil
	BaseColor() *common.TextureStagingData

	// VertexData returns the interleaved vertex buffer (see GPUVertex).
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the uint32 index buffer.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the maximum vertex distance from the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model from the provided options. Vertex and index
// buffers are packed from the mesh once all options have been applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.mesh.EnsureIndices()
	m.mesh.EnsureNormals()
	m.vertexData = PackVertices(&m.mesh)
	m.indexData = PackIndices(&m.mesh)
	if m.boundingRadius == 0 {
		m.boundingRadius = m.mesh.BoundingRadius()
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() *Mesh {
	return &m.mesh
}

func (m *model) BaseColor() *common.TextureStagingData {
	return m.baseColor
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return len(m.mesh.Indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
