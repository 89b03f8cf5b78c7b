package shader

import "io"

// StageBuilderOption is a functional option used to configure a Stage during construction.
type StageBuilderOption func(*stage)

// WithStageDiagnostics sets the writer receiving the numbered source dump when a stage fails
// validation. Defaults to os.Stderr, a nil writer disables the dump.
//
// Parameters:
//   - w: the diagnostics writer
//
// Returns:
//   - StageBuilderOption: a function that sets the diagnostics writer for the stage
func WithStageDiagnostics(w io.Writer) StageBuilderOption {
	return func(s *stage) {
		s.diagnostics = w
	}
}
