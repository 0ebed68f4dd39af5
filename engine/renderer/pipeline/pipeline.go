package pipeline

import (
	"sync"

	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It pairs a shader program with the fixed-function state used to build its GPU render pipeline.
type pipeline struct {
	mu *sync.Mutex

	program shader.Program

	renderPipeline  *wgpu.RenderPipeline
	materialLayout  *wgpu.BindGroupLayout
	depthTest       bool
	topology        wgpu.PrimitiveTopology
	frontFace       wgpu.FrontFace
	writeMask       wgpu.ColorWriteMask
	blendState      *wgpu.BlendState
	depthWriteForce *bool
}

// Pipeline defines a render pipeline built from a shader.Program.
// The GPU objects are created lazily by the renderer backend and stored back on the Pipeline.
type Pipeline interface {
	// Key returns the unique key of the underlying program.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Program returns the shader program the pipeline is built from.
	//
	// Returns:
	//   - shader.Program: the program
	Program() shader.Program

	// DepthTestEnabled reports whether fragments are depth tested.
	//
	// Returns:
	//   - bool: true when depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	//
	// Returns:
	//   - bool: true when depth writes are enabled
	DepthWriteEnabled() bool

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order considered front facing.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// WriteMask returns the colour write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the colour blend state.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// RenderPipeline returns the GPU pipeline, or nil before it has been created.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// MaterialLayout returns the GPU layout of the material bind group, or nil before creation.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the material layout
	MaterialLayout() *wgpu.BindGroupLayout

	// SetRenderPipeline stores the created GPU pipeline and material layout.
	//
	// Parameters:
	//   - rp: the GPU pipeline
	//   - materialLayout: the layout used for material bind groups
	SetRenderPipeline(rp *wgpu.RenderPipeline, materialLayout *wgpu.BindGroupLayout)

	// Release frees the GPU objects held by the pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for a program with straight-alpha blending enabled,
// triangle-list topology, counter-clockwise front faces and depth testing on.
//
// Parameters:
//   - program: the shader program
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(program shader.Program, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:        &sync.Mutex{},
		program:   program,
		depthTest: true,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		frontFace: wgpu.FrontFaceCCW,
		writeMask: wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.program.Key()
}

func (p *pipeline) Program() shader.Program {
	return p.program
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTest
}

func (p *pipeline) DepthWriteEnabled() bool {
	if p.depthWriteForce != nil {
		return *p.depthWriteForce
	}
	return p.program.DepthWrite
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.program.CullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderPipeline
}

func (p *pipeline) MaterialLayout() *wgpu.BindGroupLayout {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.materialLayout
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, materialLayout *wgpu.BindGroupLayout) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderPipeline = rp
	p.materialLayout = materialLayout
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.materialLayout != nil {
		p.materialLayout.Release()
		p.materialLayout = nil
	}
}
