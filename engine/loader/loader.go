// Package loader imports glTF and GLB models into a single flattened mesh.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrDracoUnsupported is returned for documents that require Draco mesh compression.
	ErrDracoUnsupported = errors.New("loader: KHR_draco_mesh_compression is not supported")

	// ErrNoMeshes is returned when a document contains no triangle geometry.
	ErrNoMeshes = errors.New("loader: document contains no triangle meshes")
)

// Summary describes a model file for the inspect command.
type Summary struct {
	Path       string
	Format     Format
	Meshes     int
	Primitives int
	Nodes      int
	Materials  int
	Textures   int
	Vertices   int
	Triangles  int
	Extensions []string
	Draco      bool
	Min, Max   mgl32.Vec3
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backend loaderBackend
	logger  *slog.Logger
}

// Loader defines the public-facing interface for loading and caching 3D models.
// The container format is sniffed from the file header rather than trusted from
// the extension, and every mesh in the file is flattened into one Model.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnknownFormat, ErrDracoUnsupported, ErrNoMeshes or an I/O error
	Load(path string) (model.Model, error)

	// LoadReader imports a self-contained model (GLB or glTF with embedded buffers)
	// from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Inspect summarises a model file without caching it.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - Summary: counts, bounds and extensions of the file
	//   - error: error if the file cannot be read
	Inspect(path string) (Summary, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Evict removes a model from the cache so the next Load re-reads the file.
	//
	// Parameters:
	//   - name: the cache key to remove
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new glTF Loader with the provided options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(l)
	}
	l.backend = newGLTFLoaderBackend(l.logger)
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	format, err := SniffFile(path)
	if err != nil {
		return nil, err
	}

	m, err := l.backend.Load(path, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()

	l.logger.Info("model loaded", "path", path, "vertices", m.Mesh().VertexCount(),
		"triangles", m.Mesh().TriangleCount())
	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	m, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) Inspect(path string) (Summary, error) {
	format, err := SniffFile(path)
	if err != nil {
		return Summary{Path: path}, err
	}
	return l.backend.Inspect(path, format)
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.modelCache, name)
}
