package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer
	// needed. They are populated by the renderer backend, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not yet created.
	bindGroup *wgpu.BindGroup
	// buffers holds the uniform buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds textures owned by this provider, keyed by binding index.
	textures map[int]*wgpu.Texture
	// textureViews holds the texture views bound by this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the samplers bound by this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler
	// shared marks bindings whose view or sampler belongs to someone else and must not be released here.
	shared map[int]bool

	// vertexBuffer is the GPU vertex buffer of a mesh provider.
	vertexBuffer *wgpu.Buffer
	// indexBuffer is the GPU index buffer of a mesh provider.
	indexBuffer *wgpu.Buffer
	// indexCount is the number of indices issued by drawIndexed for this provider.
	indexCount int
	// source identifies what the vertex and index buffers were built from, so the
	// backend can tell when they are stale.
	source any
}

// BindGroupProvider holds the GPU resources behind one bind group: uniform buffers,
// textures, samplers and the bind group built from them. Mesh providers also hold
// the vertex and index buffers of the object they draw.
//
// Usage pattern:
//  1. The backend creates a provider per camera, object and material
//  2. It stores the GPU resources it creates with the Set* methods
//  3. It creates the bind group once every binding is present, and drops it with
//     ReleaseBindGroup when a bound view changes
//  4. Draw calls read BindGroup, VertexBuffer and IndexBuffer
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider, except views and
	// samplers stored with SetSharedTextureView or SetSharedSampler.
	Release()

	// ReleaseBindGroup releases only the bind group, keeping the resources it was built from.
	ReleaseBindGroup()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the uniform buffer at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Texture returns the texture owned at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Texture: the texture or nil
	Texture(binding int) *wgpu.Texture

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Source returns the value the mesh buffers were built from.
	//
	// Returns:
	//   - any: the source, or nil before SetMesh
	Source() any

	// SetBindGroup sets the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores the uniform buffer for a binding, releasing the previous one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture stores an owned texture and its view for a binding, releasing the previous pair.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - view: a view of tex
	SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView)

	// SetSharedTextureView binds a view owned elsewhere, such as a render target.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	SetSharedTextureView(binding int, view *wgpu.TextureView)

	// SetSharedSampler binds a sampler owned elsewhere.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSharedSampler(binding int, s *wgpu.Sampler)

	// SetMesh stores the vertex and index buffers of a mesh, releasing the previous pair.
	//
	// Parameters:
	//   - source: what the buffers were built from
	//   - vertexBuffer: the vertex buffer
	//   - indexBuffer: the index buffer
	//   - indexCount: the number of indices
	SetMesh(source any, vertexBuffer, indexBuffer *wgpu.Buffer, indexCount int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new, empty BindGroupProvider.
//
// Parameters:
//   - label: a debug label used for the GPU objects created for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		shared:       make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) Source() any {
	return p.source
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.ReleaseBindGroup()
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView) {
	p.releaseTexture(binding)
	p.textures[binding] = tex
	p.textureViews[binding] = view
}

func (p *bindGroupProvider) SetSharedTextureView(binding int, view *wgpu.TextureView) {
	p.releaseTexture(binding)
	p.textureViews[binding] = view
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetSharedSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetMesh(source any, vertexBuffer, indexBuffer *wgpu.Buffer, indexCount int) {
	p.releaseMesh()
	p.source = source
	p.vertexBuffer = vertexBuffer
	p.indexBuffer = indexBuffer
	p.indexCount = indexCount
}

func (p *bindGroupProvider) ReleaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.ReleaseBindGroup()
	for i := range p.textureViews {
		p.releaseTexture(i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.shared[i] {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	p.releaseMesh()
}

func (p *bindGroupProvider) releaseTexture(binding int) {
	if !p.shared[binding] {
		if view := p.textureViews[binding]; view != nil {
			view.Release()
		}
		if tex := p.textures[binding]; tex != nil {
			tex.Release()
		}
	}
	delete(p.textureViews, binding)
	delete(p.textures, binding)
	delete(p.shared, binding)
}

func (p *bindGroupProvider) releaseMesh() {
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
	p.source = nil
}
