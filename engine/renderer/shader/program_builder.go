package shader

import "io"

// ProgramBuilderOption is a functional option used to configure a ProgramAssembler during construction.
type ProgramBuilderOption func(*programAssembler)

// WithProgramDiagnostics sets the writer receiving the numbered source dump of any stage that
// fails validation. Defaults to os.Stderr, a nil writer disables the dump.
//
// Parameters:
//   - w: the diagnostics writer
//
// Returns:
//   - ProgramBuilderOption: a function that sets the diagnostics writer for every stage of the program
func WithProgramDiagnostics(w io.Writer) ProgramBuilderOption {
	return func(p *programAssembler) {
		p.diagnostics = w
	}
}
