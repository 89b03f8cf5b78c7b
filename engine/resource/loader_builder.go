package resource

import "io"

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of workers LoadAll assembles programs on.
// Values below 1 are ignored. Defaults to NumCPU-1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithDiagnostics sets the writer receiving numbered source dumps of rejected stages.
// Defaults to os.Stderr, nil disables the dumps.
//
// Parameters:
//   - w: the diagnostics writer
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithDiagnostics(w io.Writer) LoaderBuilderOption {
	return func(l *loader) {
		l.diagnostics = w
	}
}
