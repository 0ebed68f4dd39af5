package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/camera"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

// Composite material bindings.
const (
	bindingParams  = 0
	bindingInput   = 1
	bindingSampler = 2
)

// Basic material bindings.
const (
	bindingTextTexture = 0
	bindingTextSampler = 1
)

// wgpuRendererBackend draws with WebGPU. Both passes use the surface format so a
// single pipeline per program serves the offscreen and the screen target.
type wgpuRendererBackend struct {
	mu     *sync.Mutex
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	width, height int

	cameraLayout *wgpu.BindGroupLayout
	modelLayout  *wgpu.BindGroupLayout
	pipelines    map[shader.ProgramKind]pipeline.Pipeline
	sampler      *wgpu.Sampler

	offscreen      bind_group_provider.BindGroupProvider // colour target, binding 0
	offscreenDepth bind_group_provider.BindGroupProvider // depth target, binding 0
	screenDepth    bind_group_provider.BindGroupProvider // depth target, binding 0

	camera            bind_group_provider.BindGroupProvider
	textMaterial      bind_group_provider.BindGroupProvider
	compositeMaterial bind_group_provider.BindGroupProvider
	objects           map[uint64]bind_group_provider.BindGroupProvider

	textWidth, textHeight uint32

	// compositeInput is the view the composite material bind group was built with.
	compositeInput *wgpu.TextureView

	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, mode PresentMode, logger *slog.Logger) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		mu:        &sync.Mutex{},
		logger:    logger,
		instance:  wgpu.CreateInstance(nil),
		pipelines: make(map[shader.ProgramKind]pipeline.Pipeline),
		objects:   make(map[uint64]bind_group_provider.BindGroupProvider),
	}
	b.setPresentMode(mode)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	b.surfaceFormat = pickSurfaceFormat(capabilities.Formats)
	b.alphaMode = capabilities.AlphaModes[0]

	if err := b.createSharedResources(); err != nil {
		return nil, err
	}
	b.logger.Info("wgpu backend ready", "format", uint32(b.surfaceFormat), "fallback", forceFallbackAdapter)
	return b, nil
}

// pickSurfaceFormat prefers a non-sRGB 8-bit format so the offscreen target
// stores exactly what the fragment programs output.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	return formats[0]
}

func (b *wgpuRendererBackend) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

// createSharedResources builds the bind group layouts, both pipelines, the
// sampler and the uniform buffers that live as long as the device.
func (b *wgpuRendererBackend) createSharedResources() error {
	var err error
	cameraDesc := shader.CameraLayout()
	if b.cameraLayout, err = b.device.CreateBindGroupLayout(&cameraDesc); err != nil {
		return fmt.Errorf("camera layout: %w", err)
	}
	modelDesc := shader.ModelLayout()
	if b.modelLayout, err = b.device.CreateBindGroupLayout(&modelDesc); err != nil {
		return fmt.Errorf("model layout: %w", err)
	}

	for _, prog := range []shader.Program{shader.Basic(), shader.CompositeProgram()} {
		p := pipeline.NewPipeline(prog)
		if err := b.registerRenderPipeline(p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Key(), err)
		}
		b.pipelines[prog.Kind] = p
	}

	b.sampler, err = b.createSampler(common.SamplerStagingData{})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	b.camera = bind_group_provider.NewBindGroupProvider("camera")
	buf, err := b.createUniformBuffer("camera", shader.CameraUniformSize)
	if err != nil {
		return err
	}
	b.camera.SetBuffer(0, buf)
	if err := b.initBindGroup(b.camera, b.cameraLayout, shader.CameraLayout()); err != nil {
		return err
	}

	b.textMaterial = bind_group_provider.NewBindGroupProvider("text material",
		bind_group_provider.WithSharedSampler(bindingTextSampler, b.sampler))

	params, err := b.createUniformBuffer("composite params", shader.ParamsUniformSize)
	if err != nil {
		return err
	}
	b.compositeMaterial = bind_group_provider.NewBindGroupProvider("composite material",
		bind_group_provider.WithBuffer(bindingParams, params),
		bind_group_provider.WithSharedSampler(bindingSampler, b.sampler))

	b.offscreen = bind_group_provider.NewBindGroupProvider("offscreen target")
	b.offscreenDepth = bind_group_provider.NewBindGroupProvider("offscreen depth")
	b.screenDepth = bind_group_provider.NewBindGroupProvider("screen depth")
	return nil
}

func (b *wgpuRendererBackend) registerRenderPipeline(p pipeline.Pipeline) error {
	prog := p.Program()
	if err := prog.Check(); err != nil {
		return err
	}
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: prog.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: prog.Source,
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	materialLayout, err := b.device.CreateBindGroupLayout(&prog.MaterialLayout)
	if err != nil {
		return fmt.Errorf("material layout: %w", err)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout, b.modelLayout, materialLayout},
	})
	if err != nil {
		materialLayout.Release()
		return err
	}
	defer layout.Release()

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: prog.VertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{shader.VertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: prog.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		materialLayout.Release()
		return err
	}

	p.SetRenderPipeline(created, materialLayout)
	return nil
}

func (b *wgpuRendererBackend) createSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Linear Clamp Sampler",
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
}

func (b *wgpuRendererBackend) createUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s buffer: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackend) initBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, desc wgpu.BindGroupLayoutDescriptor) error {
	entries, err := bind_group_provider.Entries(provider, desc)
	if err != nil {
		return err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackend) createTarget(provider bind_group_provider.BindGroupProvider, format wgpu.TextureFormat, usage wgpu.TextureUsage) error {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: provider.Label(),
		Size: wgpu.Extent3D{
			Width:              uint32(b.width),
			Height:             uint32(b.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", provider.Label(), err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("%s view: %w", provider.Label(), err)
	}
	provider.SetTexture(0, tex, view)
	return nil
}

func (b *wgpuRendererBackend) Configure(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	b.width, b.height = width, height

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})

	if err := b.createTarget(b.offscreen, b.surfaceFormat, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding); err != nil {
		return err
	}
	if err := b.createTarget(b.offscreenDepth, depthFormat, wgpu.TextureUsageRenderAttachment); err != nil {
		return err
	}
	if err := b.createTarget(b.screenDepth, depthFormat, wgpu.TextureUsageRenderAttachment); err != nil {
		return err
	}
	// The composite material still points at the released offscreen view.
	b.compositeMaterial.ReleaseBindGroup()
	b.compositeInput = nil
	return nil
}

func (b *wgpuRendererBackend) UploadText(tex common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tex.Width == 0 || tex.Height == 0 {
		return errors.New("empty text texture")
	}

	current := b.textMaterial.Texture(bindingTextTexture)
	if current == nil || b.textWidth != tex.Width || b.textHeight != tex.Height {
		created, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     "Text Texture",
			Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              tex.Width,
				Height:             tex.Height,
				DepthOrArrayLayers: 1,
			},
			Format:        wgpu.TextureFormatRGBA8Unorm,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return err
		}
		view, err := created.CreateView(nil)
		if err != nil {
			created.Release()
			return err
		}
		b.textMaterial.SetTexture(bindingTextTexture, created, view)
		if err := b.initBindGroup(b.textMaterial, b.pipelines[shader.ProgramBasic].MaterialLayout(), shader.Basic().MaterialLayout); err != nil {
			return err
		}
		// A composite bound to the old text view must be rebuilt.
		b.compositeMaterial.ReleaseBindGroup()
		b.compositeInput = nil
		b.textWidth, b.textHeight = tex.Width, tex.Height
		current = created
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  current,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		tex.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  tex.Width * 4,
			RowsPerImage: tex.Height,
		},
		&wgpu.Extent3D{
			Width:              tex.Width,
			Height:             tex.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuRendererBackend) DrawOffscreen(snap scene.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	view := b.offscreen.TextureView(0)
	if view == nil {
		return errors.New("offscreen target not configured")
	}
	return b.drawPass("Offscreen Pass", view, b.offscreenDepth.TextureView(0), &snap)
}

func (b *wgpuRendererBackend) DrawScreen(snap scene.Snapshot, params shader.Params, inputIsOffscreen bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	if snap.Contains(shader.ProgramComposite) {
		if err := b.bindCompositeInput(inputIsOffscreen); err != nil {
			return err
		}
		b.writeBuffers([]bind_group_provider.BufferWrite{
			{Provider: b.compositeMaterial, Binding: bindingParams, Data: marshalParams(params)},
		})
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view

	// The screen pass sees every live object, so anything else cached is stale.
	for _, id := range pruneObjects(b.objects, snap.Objects) {
		b.logger.Debug("object resources released", "object", id)
	}
	return b.drawPass("Screen Pass", view, b.screenDepth.TextureView(0), &snap)
}

// bindCompositeInput points the composite material at the offscreen target or
// the text texture, rebuilding its bind group when the view changes.
func (b *wgpuRendererBackend) bindCompositeInput(inputIsOffscreen bool) error {
	input := b.textMaterial.TextureView(bindingTextTexture)
	if inputIsOffscreen {
		input = b.offscreen.TextureView(0)
	}
	if input == nil {
		return errors.New("composite input texture not available")
	}
	if input == b.compositeInput && b.compositeMaterial.BindGroup() != nil {
		return nil
	}
	b.compositeMaterial.SetSharedTextureView(bindingInput, input)
	layout := b.pipelines[shader.ProgramComposite].MaterialLayout()
	if err := b.initBindGroup(b.compositeMaterial, layout, shader.CompositeProgram().MaterialLayout); err != nil {
		return err
	}
	b.compositeInput = input
	return nil
}

// drawPass encodes and submits one render pass over the snapshot's draw list.
// Uniform writes are queued before the submit, so each pass sees its own values.
func (b *wgpuRendererBackend) drawPass(label string, color, depth *wgpu.TextureView, snap *scene.Snapshot) error {
	cam := camera.GPUCameraUniform{View: snap.View, Projection: snap.Projection}
	writes := []bind_group_provider.BufferWrite{{Provider: b.camera, Binding: 0, Data: cam.Marshal()}}

	type draw struct {
		pipeline pipeline.Pipeline
		object   bind_group_provider.BindGroupProvider
		material bind_group_provider.BindGroupProvider
	}
	draws := make([]draw, 0, len(snap.Objects))
	for _, obj := range snap.Objects {
		material := b.textMaterial
		if obj.Program == shader.ProgramComposite {
			material = b.compositeMaterial
		}
		if material.BindGroup() == nil || obj.Model == nil {
			continue
		}
		provider, err := b.objectResources(obj)
		if err != nil {
			return err
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  0,
			Data:     marshalObject(obj, snap),
		})
		draws = append(draws, draw{pipeline: b.pipelines[obj.Program], object: provider, material: material})
	}
	b.writeBuffers(writes)

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       color,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	for _, d := range draws {
		pass.SetPipeline(d.pipeline.RenderPipeline())
		pass.SetBindGroup(shader.GroupCamera, b.camera.BindGroup(), nil)
		pass.SetBindGroup(shader.GroupModel, d.object.BindGroup(), nil)
		pass.SetBindGroup(shader.GroupMaterial, d.material.BindGroup(), nil)
		pass.SetVertexBuffer(0, d.object.VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(d.object.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(d.object.IndexCount()), 1, 0, 0, 0)
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	return nil
}

// objectResources returns the per-object provider, uploading mesh buffers
// whenever the object's model changes.
func (b *wgpuRendererBackend) objectResources(obj scene.Object) (bind_group_provider.BindGroupProvider, error) {
	provider, ok := b.objects[obj.ID]
	if !ok {
		provider = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("object %d %s", obj.ID, obj.Name))
		buf, err := b.createUniformBuffer(provider.Label(), shader.ModelUniformSize)
		if err != nil {
			return nil, err
		}
		provider.SetBuffer(0, buf)
		if err := b.initBindGroup(provider, b.modelLayout, shader.ModelLayout()); err != nil {
			provider.Release()
			return nil, err
		}
		b.objects[obj.ID] = provider
	}

	if provider.Source() != obj.Model {
		vertexData, indexData := obj.Model.VertexData(), obj.Model.IndexData()
		if len(vertexData) == 0 || len(indexData) == 0 {
			return nil, fmt.Errorf("%s: model has no geometry", provider.Label())
		}
		vb, err := b.createMeshBuffer(provider.Label()+" Vertex Buffer", vertexData, wgpu.BufferUsageVertex)
		if err != nil {
			return nil, err
		}
		ib, err := b.createMeshBuffer(provider.Label()+" Index Buffer", indexData, wgpu.BufferUsageIndex)
		if err != nil {
			vb.Release()
			return nil, err
		}
		provider.SetMesh(obj.Model, vb, ib, obj.Model.IndexCount())
		b.logger.Debug("mesh buffers uploaded", "object", provider.Label(), "indices", obj.Model.IndexCount())
	}
	return provider, nil
}

// pruneObjects releases and removes every cached entry whose ID is not in live.
//
// Parameters:
//   - cache: per-object resources keyed by object ID
//   - live: the objects still in the scene
//
// Returns:
//   - []uint64: the removed IDs in ascending order
func pruneObjects[P interface{ Release() }](cache map[uint64]P, live []scene.Object) []uint64 {
	keep := make(map[uint64]struct{}, len(live))
	for _, obj := range live {
		keep[obj.ID] = struct{}{}
	}
	var removed []uint64
	for id, p := range cache {
		if _, ok := keep[id]; ok {
			continue
		}
		p.Release()
		delete(cache, id)
		removed = append(removed, id)
	}
	slices.Sort(removed)
	return removed
}

func (b *wgpuRendererBackend) createMeshBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackend) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return nil
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
	return nil
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, p := range b.objects {
		p.Release()
		delete(b.objects, id)
	}
	for _, p := range []bind_group_provider.BindGroupProvider{
		b.camera, b.textMaterial, b.compositeMaterial, b.offscreen, b.offscreenDepth, b.screenDepth,
	} {
		if p != nil {
			p.Release()
		}
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	if b.sampler != nil {
		b.sampler.Release()
	}
	if b.cameraLayout != nil {
		b.cameraLayout.Release()
	}
	if b.modelLayout != nil {
		b.modelLayout.Release()
	}
	if b.frameView != nil {
		b.frameView.Release()
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

// marshalObject packs the per-object uniform block: the world matrix and the
// view-space normal matrix widened to a mat4x4.
func marshalObject(obj scene.Object, snap *scene.Snapshot) []byte {
	buf := make([]byte, shader.ModelUniformSize)
	normal := obj.NormalMatrix(snap).Mat4()
	off := common.PutFloat32s(buf, 0, obj.World[:]...)
	common.PutFloat32s(buf, off, normal[:]...)
	return buf
}
