package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/qmuntal/gltf"
)

// gltfLoaderBackend is a loaderBackend for glTF JSON and GLB files built on qmuntal/gltf.
type gltfLoaderBackend struct {
	logger *slog.Logger
}

var _ loaderBackend = &gltfLoaderBackend{}

func newGLTFLoaderBackend(logger *slog.Logger) *gltfLoaderBackend {
	return &gltfLoaderBackend{logger: logger}
}

func (b *gltfLoaderBackend) Load(path string, format Format) (model.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	b.logger.Debug("gltf document opened", "path", path, "format", format.String(),
		"meshes", len(doc.Meshes), "nodes", len(doc.Nodes))
	return b.build(doc, filepath.Base(path), filepath.Dir(path))
}

func (b *gltfLoaderBackend) LoadReader(name string, r io.Reader) (model.Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", name, err)
	}
	return b.build(doc, name, ".")
}

func (b *gltfLoaderBackend) Inspect(path string, format Format) (Summary, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("loader: open %s: %w", path, err)
	}

	s := Summary{
		Path:       path,
		Format:     format,
		Meshes:     len(doc.Meshes),
		Nodes:      len(doc.Nodes),
		Materials:  len(doc.Materials),
		Textures:   len(doc.Textures),
		Extensions: append([]string(nil), doc.ExtensionsUsed...),
		Draco:      usesDraco(doc),
	}
	for _, m := range doc.Meshes {
		s.Primitives += len(m.Primitives)
	}
	if s.Draco {
		return s, nil
	}

	ext := newGLTFMeshExtractor(doc)
	mesh, err := ext.Extract()
	if err != nil {
		return s, err
	}
	s.Vertices = mesh.VertexCount()
	s.Triangles = mesh.TriangleCount()
	s.Min, s.Max = mesh.Bounds()
	return s, nil
}

func (b *gltfLoaderBackend) build(doc *gltf.Document, name, dir string) (model.Model, error) {
	meshes := newGLTFMeshExtractor(doc)
	mesh, err := meshes.Extract()
	if err != nil {
		return nil, err
	}

	opts := []model.ModelBuilderOption{
		model.WithName(name),
		model.WithMesh(mesh),
	}
	if meshes.firstMaterial >= 0 {
		tex, err := newGLTFMaterialExtractor(doc, dir).BaseColor(meshes.firstMaterial)
		if err != nil {
			// The composite program never samples the base colour, so a bad
			// texture is not fatal.
			b.logger.Warn("base colour texture skipped", "model", name, "error", err)
		} else if tex != nil {
			opts = append(opts, model.WithBaseColor(tex))
		}
	}

	b.logger.Debug("gltf mesh flattened", "model", name, "primitives", meshes.primitives,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	return model.NewModel(opts...), nil
}
