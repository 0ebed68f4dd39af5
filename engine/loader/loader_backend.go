package loader

import (
	"io"

	"github.com/Carmen-Shannon/scrollscene/engine/model"
)

// loaderBackend defines the format-specific half of the Loader.
// Concrete implementations (e.g., gltfLoaderBackend) turn a file or stream into a Model.
type loaderBackend interface {
	// Load imports a model file, flattening every mesh into one.
	//
	// Parameters:
	//   - path: the file path to load
	//   - format: the sniffed container format
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	Load(path string, format Format) (model.Model, error)

	// LoadReader imports a self-contained model from a reader stream.
	//
	// Parameters:
	//   - name: the name given to the model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Inspect reads a model file and summarises it without building GPU buffers.
	//
	// Parameters:
	//   - path: the file path to inspect
	//   - format: the sniffed container format
	//
	// Returns:
	//   - Summary: the file summary
	//   - error: error if the file cannot be read
	Inspect(path string, format Format) (Summary, error)
}
