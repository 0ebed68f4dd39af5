package bind_group_provider

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Entries builds the bind group entries for a layout from the resources a provider holds.
// Every texture and sampler binding must already be set; buffer bindings must be set too,
// the provider does not allocate.
//
// Parameters:
//   - p: the provider
//   - layout: the layout the bind group is created against
//
// Returns:
//   - []wgpu.BindGroupEntry: one entry per layout entry
//   - error: an error naming the first binding with no resource
func Entries(p BindGroupProvider, layout wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, len(layout.Entries))
	for i, entry := range layout.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := p.TextureView(binding)
			if tv == nil {
				return nil, fmt.Errorf("%s: texture binding %d has no texture view", p.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case isSampler:
			s := p.Sampler(binding)
			if s == nil {
				return nil, fmt.Errorf("%s: sampler binding %d has no sampler", p.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := p.Buffer(binding)
			if buf == nil {
				return nil, fmt.Errorf("%s: buffer binding %d has no buffer", p.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}
	return entries, nil
}
