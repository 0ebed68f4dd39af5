package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindGroupProviderIsEmpty(t *testing.T) {
	p := NewBindGroupProvider("text material")

	assert.Equal(t, "text material", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.Texture(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
	assert.Zero(t, p.IndexCount())
	assert.Nil(t, p.Source())

	// Releasing an empty provider is a no-op.
	p.Release()
	p.ReleaseBindGroup()
}

func TestEntriesReportsFirstMissingBinding(t *testing.T) {
	tests := []struct {
		name    string
		program shader.Program
		want    string
	}{
		{"basic needs its texture", shader.Basic(), "texture binding 0"},
		{"composite needs its params buffer", shader.CompositeProgram(), "buffer binding 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewBindGroupProvider(tt.program.Key())
			entries, err := Entries(p, tt.program.MaterialLayout)
			require.Error(t, err)
			assert.Nil(t, entries)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), tt.program.Key())
		})
	}
}

func TestEntriesOfCameraLayoutNeedsBuffer(t *testing.T) {
	entries, err := Entries(NewBindGroupProvider("empty"), shader.CameraLayout())
	require.Error(t, err)
	assert.Nil(t, entries)
}
