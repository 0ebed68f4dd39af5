package shader

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/composite.wgsl
var compositeSource string

//go:embed assets/basic.wgsl
var basicSource string

// Bind group indices shared by both programs.
const (
	GroupCamera   = 0
	GroupModel    = 1
	GroupMaterial = 2
)

// Uniform block sizes in bytes.
const (
	CameraUniformSize = 128 // view + projection
	ModelUniformSize  = 128 // model + normal matrix
	ParamsUniformSize = 16  // resolution, time, blur size
)

// VertexStride is the size of one interleaved vertex: position, normal, uv.
const VertexStride = 32

// ProgramKind identifies one of the built-in programs.
type ProgramKind int

const (
	// ProgramBasic draws an unlit, alpha-blended texture. It expects premultiplied texels.
	ProgramBasic ProgramKind = iota

	// ProgramComposite blurs the offscreen colour buffer and adds a fresnel rim.
	ProgramComposite
)

// String returns the program key.
func (k ProgramKind) String() string {
	switch k {
	case ProgramBasic:
		return "basic"
	case ProgramComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Program describes a WGSL program and the resource layout it binds.
type Program struct {
	Kind           ProgramKind
	Source         string
	VertexEntry    string
	FragmentEntry  string
	CullMode       wgpu.CullMode
	DepthWrite     bool
	MaterialLayout wgpu.BindGroupLayoutDescriptor
}

// Key returns the unique program key used for caching pipelines.
func (p Program) Key() string {
	return p.Kind.String()
}

// CameraLayout is the layout of the camera bind group shared by all programs.
func CameraLayout() wgpu.BindGroupLayoutDescriptor {
	return uniformLayout("camera", CameraUniformSize, wgpu.ShaderStageVertex)
}

// ModelLayout is the layout of the per-object bind group shared by all programs.
func ModelLayout() wgpu.BindGroupLayoutDescriptor {
	return uniformLayout("model", ModelUniformSize, wgpu.ShaderStageVertex)
}

// VertexLayout describes the interleaved vertex buffer consumed by every program.
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// Basic returns the unlit textured program used for the text plane.
func Basic() Program {
	return Program{
		Kind:          ProgramBasic,
		Source:        basicSource,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		CullMode:      wgpu.CullModeBack,
		DepthWrite:    true,
		MaterialLayout: wgpu.BindGroupLayoutDescriptor{
			Label: "basic material",
			Entries: []wgpu.BindGroupLayoutEntry{
				textureEntry(0),
				samplerEntry(1),
			},
		},
	}
}

// CompositeProgram returns the blur and fresnel program used for the mesh.
// It renders both faces and does not write depth, like other transparent surfaces.
func CompositeProgram() Program {
	return Program{
		Kind:          ProgramComposite,
		Source:        compositeSource,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		CullMode:      wgpu.CullModeNone,
		DepthWrite:    false,
		MaterialLayout: wgpu.BindGroupLayoutDescriptor{
			Label: "composite material",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageFragment,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeUniform,
						MinBindingSize: ParamsUniformSize,
					},
				},
				textureEntry(1),
				samplerEntry(2),
			},
		},
	}
}

func uniformLayout(label string, size uint64, stages wgpu.ShaderStage) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: stages,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

func textureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		},
	}
}
