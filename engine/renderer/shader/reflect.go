package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceKind classifies a WGSL resource declaration.
type ResourceKind int

const (
	ResourceUnknown ResourceKind = iota
	ResourceUniform
	ResourceTexture2D
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUniform:
		return "uniform"
	case ResourceTexture2D:
		return "texture_2d"
	case ResourceSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// Binding is one @group/@binding declaration found in WGSL source.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Kind    ResourceKind
}

// Reflection is the interface of a WGSL program as declared in its source.
type Reflection struct {
	VertexEntry   string
	FragmentEntry string
	Bindings      []Binding
	// Inputs maps each @location of the vertex input struct to its format.
	Inputs map[uint32]wgpu.VertexFormat
}

var (
	resourceDecl  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	structBlock   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationField = regexp.MustCompile(`@location\((\d+)\)\s*\w+\s*:\s*([\w<>]+)`)
	vertexEntry   = regexp.MustCompile(`(?s)@vertex\s+fn\s+(\w+)`)
	fragmentEntry = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)`)
	lineComment   = regexp.MustCompile(`//[^\n]*`)
)

var vertexFormats = map[string]wgpu.VertexFormat{
	"f32":       wgpu.VertexFormatFloat32,
	"vec2<f32>": wgpu.VertexFormatFloat32x2,
	"vec3<f32>": wgpu.VertexFormatFloat32x3,
	"vec4<f32>": wgpu.VertexFormatFloat32x4,
	"vec2f":     wgpu.VertexFormatFloat32x2,
	"vec3f":     wgpu.VertexFormatFloat32x3,
	"vec4f":     wgpu.VertexFormatFloat32x4,
}

// Reflect reads the entry points, resource bindings and vertex inputs declared
// in WGSL source. The vertex input struct is the struct of @location fields
// without any @builtin field.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - Reflection: what the source declares
func Reflect(source string) Reflection {
	src := lineComment.ReplaceAllString(source, "")
	r := Reflection{Inputs: make(map[uint32]wgpu.VertexFormat)}

	if m := vertexEntry.FindStringSubmatch(src); m != nil {
		r.VertexEntry = m[1]
	}
	if m := fragmentEntry.FindStringSubmatch(src); m != nil {
		r.FragmentEntry = m[1]
	}

	for _, m := range resourceDecl.FindAllStringSubmatch(src, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		binding, _ := strconv.ParseUint(m[2], 10, 32)
		r.Bindings = append(r.Bindings, Binding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    m[4],
			Kind:    classify(m[3], strings.ReplaceAll(m[5], " ", "")),
		})
	}

	for _, m := range structBlock.FindAllStringSubmatch(src, -1) {
		body := m[2]
		if strings.Contains(body, "@builtin") || !strings.Contains(body, "@location") {
			continue
		}
		for _, f := range locationField.FindAllStringSubmatch(body, -1) {
			loc, _ := strconv.ParseUint(f[1], 10, 32)
			if format, ok := vertexFormats[f[2]]; ok {
				r.Inputs[uint32(loc)] = format
			}
		}
		break
	}
	return r
}

func classify(addressSpace, typeName string) ResourceKind {
	switch {
	case addressSpace == "uniform":
		return ResourceUniform
	case typeName == "sampler":
		return ResourceSampler
	case typeName == "texture_2d<f32>":
		return ResourceTexture2D
	default:
		return ResourceUnknown
	}
}

func layoutKind(e wgpu.BindGroupLayoutEntry) ResourceKind {
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return ResourceUniform
	case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return ResourceSampler
	case e.Texture.ViewDimension == wgpu.TextureViewDimension2D:
		return ResourceTexture2D
	default:
		return ResourceUnknown
	}
}

// Check reports the first difference between the layouts the program declares
// and what its WGSL source binds.
//
// Returns:
//   - error: nil when the program and its source agree
func (p Program) Check() error {
	r := Reflect(p.Source)
	if r.VertexEntry != p.VertexEntry {
		return fmt.Errorf("shader %s: vertex entry %q, source declares %q", p.Key(), p.VertexEntry, r.VertexEntry)
	}
	if r.FragmentEntry != p.FragmentEntry {
		return fmt.Errorf("shader %s: fragment entry %q, source declares %q", p.Key(), p.FragmentEntry, r.FragmentEntry)
	}

	want := map[[2]uint32]ResourceKind{
		{GroupCamera, 0}: ResourceUniform,
		{GroupModel, 0}:  ResourceUniform,
	}
	for _, e := range p.MaterialLayout.Entries {
		want[[2]uint32{GroupMaterial, e.Binding}] = layoutKind(e)
	}
	if len(r.Bindings) != len(want) {
		return fmt.Errorf("shader %s: %d bindings declared, source has %d", p.Key(), len(want), len(r.Bindings))
	}
	for _, b := range r.Bindings {
		kind, ok := want[[2]uint32{b.Group, b.Binding}]
		if !ok {
			return fmt.Errorf("shader %s: source binds %s at group %d binding %d with no layout entry", p.Key(), b.Name, b.Group, b.Binding)
		}
		if kind != b.Kind {
			return fmt.Errorf("shader %s: group %d binding %d is %s in the layout, %s in the source", p.Key(), b.Group, b.Binding, kind, b.Kind)
		}
	}

	attrs := VertexLayout().Attributes
	if len(r.Inputs) != len(attrs) {
		return fmt.Errorf("shader %s: %d vertex attributes, source reads %d", p.Key(), len(attrs), len(r.Inputs))
	}
	for _, a := range attrs {
		if got, ok := r.Inputs[a.ShaderLocation]; !ok || got != a.Format {
			return fmt.Errorf("shader %s: vertex location %d does not match the vertex layout", p.Key(), a.ShaderLocation)
		}
	}
	return nil
}
