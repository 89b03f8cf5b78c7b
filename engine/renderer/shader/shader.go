package shader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// ShaderType identifies the pipeline stage a shader source is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, required by every program.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeGeometry is the optional geometry stage. When present without a fragment stage
	// its outputs are the ones captured by transform feedback.
	ShaderTypeGeometry

	// ShaderTypeFragment is the fragment stage. Its presence makes a program a rasterization program.
	ShaderTypeFragment

	// ShaderTypeTessControl is the tessellation control stage.
	ShaderTypeTessControl

	// ShaderTypeTessEvaluation is the tessellation evaluation stage.
	ShaderTypeTessEvaluation

	// ShaderTypeCompute is the compute stage.
	ShaderTypeCompute
)

// shaderTypeDefines holds the preprocessor macro injected into each stage's source. The same
// tokens are probed for when splitting a single combined source into stages.
var shaderTypeDefines = map[ShaderType]string{
	ShaderTypeVertex:         "VERTEX_SHADER",
	ShaderTypeGeometry:       "GEOMETRY_SHADER",
	ShaderTypeFragment:       "FRAGMENT_SHADER",
	ShaderTypeTessControl:    "TESS_CONTROL_SHADER",
	ShaderTypeTessEvaluation: "TESS_EVALUATION_SHADER",
	ShaderTypeCompute:        "COMPUTE_SHADER",
}

var shaderTypeNames = map[ShaderType]string{
	ShaderTypeVertex:         "vertex",
	ShaderTypeGeometry:       "geometry",
	ShaderTypeFragment:       "fragment",
	ShaderTypeTessControl:    "tess_control",
	ShaderTypeTessEvaluation: "tess_evaluation",
	ShaderTypeCompute:        "compute",
}

// Define returns the preprocessor macro name identifying the stage, e.g. "VERTEX_SHADER".
func (t ShaderType) Define() string {
	return shaderTypeDefines[t]
}

func (t ShaderType) String() string {
	if name, ok := shaderTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

// stage is the implementation of the Stage interface.
// It holds the processed source of one shader stage, always in sync with its lines.
type stage struct {
	shaderType ShaderType
	name       string
	lines      []string
	source     string

	// diagnostics receives the numbered source dump when validation fails
	diagnostics io.Writer
}

// Stage defines the interface for a single validated and preprocessed shader stage.
type Stage interface {
	// Type returns the pipeline stage this source is compiled for.
	//
	// Returns:
	//   - ShaderType: the stage type
	Type() ShaderType

	// Name returns the display name of the stage, usually the resource path it was loaded from.
	//
	// Returns:
	//   - string: the display name used in diagnostics
	Name() string

	// Source returns the processed source, the lines joined with "\n".
	// Line 0 is the #version directive and line 1 the injected stage define.
	//
	// Returns:
	//   - string: the processed source
	Source() string

	// Lines returns a copy of the processed source lines.
	//
	// Returns:
	//   - []string: the processed source lines
	Lines() []string

	// FindOutAttributes scans the processed source for output attribute declarations.
	// Any line whose trimmed text starts with "out " is treated as a declaration of the form
	// `out <type> <name>;` and the name is returned with the trailing semicolon removed.
	// Names are returned in source order without de-duplication. Only the first name of a
	// multi-declaration line is returned and interface blocks are not understood.
	//
	// Returns:
	//   - []string: output attribute names in source order
	FindOutAttributes() []string

	// Dump writes a numbered listing of the source lines to w.
	//
	// Parameters:
	//   - w: the writer receiving the listing
	Dump(w io.Writer)
}

var _ Stage = &stage{}

// NewStage validates and preprocesses a raw shader source for one pipeline stage.
// The source is trimmed and split into lines, the first line must be a #version directive,
// and a `#define <STAGE> 1` line is inserted directly after it.
//
// Parameters:
//   - shaderType: the pipeline stage the source is compiled for
//   - name: the display name used in diagnostics, usually the resource path
//   - source: the raw shader source text
//   - options: optional StageBuilderOption functions
//
// Returns:
//   - Stage: the processed stage, nil on error
//   - error: a *ShaderError wrapping ErrMissingVersionDirective if the first line is not a #version directive
func NewStage(shaderType ShaderType, name, source string, options ...StageBuilderOption) (Stage, error) {
	s := &stage{
		shaderType:  shaderType,
		name:        name,
		diagnostics: os.Stderr,
	}
	for _, option := range options {
		option(s)
	}

	lines := splitSource(source)
	if !hasVersionDirective(lines) {
		s.lines = lines
		if s.diagnostics != nil {
			s.Dump(s.diagnostics)
		}
		slog.Error("shader source rejected", "stage", shaderType.String(), "name", name, "lines", len(lines))
		return nil, &ShaderError{Name: name, Type: shaderType, Err: ErrMissingVersionDirective}
	}

	s.lines = injectStageDefine(lines, shaderType)
	s.source = strings.Join(s.lines, "\n")
	return s, nil
}

func (s *stage) Type() ShaderType {
	return s.shaderType
}

func (s *stage) Name() string {
	return s.name
}

func (s *stage) Source() string {
	return s.source
}

func (s *stage) Lines() []string {
	return slices.Clone(s.lines)
}

func (s *stage) FindOutAttributes() []string {
	names := []string{}
	for _, line := range s.lines {
		if name, ok := parseOutAttribute(line); ok {
			names = append(names, name)
		}
	}
	return names
}

func (s *stage) Dump(w io.Writer) {
	fmt.Fprintf(w, "---[ START %s ]---\n", s.name)
	for i, line := range s.lines {
		fmt.Fprintf(w, "%03d: %s\n", i, line)
	}
	fmt.Fprintf(w, "---[ END %s ]---\n", s.name)
}
