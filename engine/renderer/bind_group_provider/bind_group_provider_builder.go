package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets a uniform buffer for a specific binding index. The provider takes ownership of it.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSharedSampler binds a sampler owned elsewhere at a specific binding index.
//
// Parameters:
//   - binding: the binding index for this sampler
//   - s: the sampler
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the specified binding
func WithSharedSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
		p.shared[binding] = true
	}
}
