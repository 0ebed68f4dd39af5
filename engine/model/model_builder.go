package model

import "github.com/Carmen-Shannon/scrollscene/common"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that sets the geometry of the Model.
// Missing indices and normals are generated by NewModel.
//
// Parameters:
//   - mesh: the model-space mesh
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(mesh Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
	}
}

// WithBaseColor is an option builder that attaches the imported base colour texture.
//
// Parameters:
//   - tex: the decoded texture
//
// Returns:
//   - ModelBuilderOption: a function that applies the texture option to a model
func WithBaseColor(tex *common.TextureStagingData) ModelBuilderOption {
	return func(m *model) {
		m.baseColor = tex
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the value computed from the mesh.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}
