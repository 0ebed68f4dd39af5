package software

import "log/slog"

// BackendBuilderOption is a functional option used to configure a Backend during construction.
type BackendBuilderOption func(*Backend)

// WithWorkers sets the maximum number of row bands rasterized concurrently.
//
// Parameters:
//   - workers: the worker count (values < 1 become 1)
//
// Returns:
//   - BackendBuilderOption: a function that sets the worker count
func WithWorkers(workers int) BackendBuilderOption {
	return func(b *Backend) {
		b.workers = workers
	}
}

// WithBandHeight sets the number of rows each raster task covers.
//
// Parameters:
//   - rows: rows per band (values < 1 become 1)
//
// Returns:
//   - BackendBuilderOption: a function that sets the band height
func WithBandHeight(rows int) BackendBuilderOption {
	return func(b *Backend) {
		b.bandHeight = rows
	}
}

// WithLogger sets the logger used for target and upload events.
//
// Parameters:
//   - logger: the logger (nil discards)
//
// Returns:
//   - BackendBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) BackendBuilderOption {
	return func(b *Backend) {
		b.logger = logger
	}
}
