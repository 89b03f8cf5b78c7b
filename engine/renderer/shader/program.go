package shader

import (
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/demosys-go/common"
)

// ProgramDescription identifies the shader resources making up one program. Either Path names a
// single source holding every stage, or VertexShader (required) plus the optional GeometryShader
// and FragmentShader name one source per stage.
type ProgramDescription struct {
	// Label is the logical name effects use to look the program up.
	Label string

	// Path is the combined source holding every stage, separated by #ifdef blocks.
	Path string

	VertexShader   string
	GeometryShader string
	FragmentShader string
}

// IsSingle reports whether the description names one combined source.
func (d ProgramDescription) IsSingle() bool {
	return d.Path != ""
}

// stageName picks the display name for a stage: its own path, then the combined path, then the label.
func (d ProgramDescription) stageName(shaderType ShaderType) string {
	var stagePath string
	switch shaderType {
	case ShaderTypeVertex:
		stagePath = d.VertexShader
	case ShaderTypeGeometry:
		stagePath = d.GeometryShader
	case ShaderTypeFragment:
		stagePath = d.FragmentShader
	}
	return common.Coalesce(stagePath, d.Path, d.Label)
}

// AssembledProgram holds the stage sources and the varyings handed to the GPU link boundary.
// Empty GeometrySource or FragmentSource means the stage is absent.
type AssembledProgram struct {
	Label          string
	VertexSource   string
	GeometrySource string
	FragmentSource string

	// Varyings are the output attributes captured by transform feedback, in declaration order.
	// Always empty when a fragment stage is present.
	Varyings []string
}

// IsTransformFeedback reports whether the program has no fragment stage and captures its outputs instead.
func (p AssembledProgram) IsTransformFeedback() bool {
	return p.FragmentSource == ""
}

// Stages returns the stages present in the program in pipeline order.
func (p AssembledProgram) Stages() []ShaderType {
	stages := []ShaderType{ShaderTypeVertex}
	if p.GeometrySource != "" {
		stages = append(stages, ShaderTypeGeometry)
	}
	if p.FragmentSource != "" {
		stages = append(stages, ShaderTypeFragment)
	}
	return stages
}

// Source returns the source of the given stage, or an empty string if the stage is absent.
func (p AssembledProgram) Source(shaderType ShaderType) string {
	switch shaderType {
	case ShaderTypeVertex:
		return p.VertexSource
	case ShaderTypeGeometry:
		return p.GeometrySource
	case ShaderTypeFragment:
		return p.FragmentSource
	default:
		return ""
	}
}

// programAssembler is the implementation of the ProgramAssembler interface.
type programAssembler struct {
	desc ProgramDescription

	vertex, geometry, fragment Stage

	diagnostics io.Writer
}

// ProgramAssembler defines the interface for a set of validated stages making up one program.
// It decides whether the program rasterizes or captures its outputs with transform feedback.
type ProgramAssembler interface {
	// Description returns the description the program was assembled from.
	//
	// Returns:
	//   - ProgramDescription: the program description
	Description() ProgramDescription

	// Stage retrieves the stage of the given type.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - Stage: the stage, or nil if the program has no such stage
	Stage(shaderType ShaderType) Stage

	// Create computes the varyings and returns the sources for the link boundary.
	// Without a fragment stage the varyings are the output attributes of the geometry stage,
	// or of the vertex stage when there is no geometry stage. With a fragment stage the
	// varyings are empty.
	//
	// Returns:
	//   - AssembledProgram: the stage sources and varyings
	Create() AssembledProgram
}

var _ ProgramAssembler = &programAssembler{}

func newProgramAssembler(desc ProgramDescription, options []ProgramBuilderOption) *programAssembler {
	p := &programAssembler{
		desc:        desc,
		diagnostics: os.Stderr,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// NewProgramFromSingle assembles a program from one combined source. A vertex stage is always
// built; geometry and fragment stages are built from the same text when it contains the
// GEOMETRY_SHADER or FRAGMENT_SHADER token anywhere, comments included.
//
// Parameters:
//   - desc: the program description, used for display names
//   - source: the combined shader source
//   - options: optional ProgramBuilderOption functions
//
// Returns:
//   - ProgramAssembler: the assembled stages, nil on error
//   - error: a *ShaderError if any stage fails validation
func NewProgramFromSingle(desc ProgramDescription, source string, options ...ProgramBuilderOption) (ProgramAssembler, error) {
	p := newProgramAssembler(desc, options)

	var err error
	if p.vertex, err = p.newStage(ShaderTypeVertex, source); err != nil {
		return nil, err
	}
	if containsStageDefine(source, ShaderTypeGeometry) {
		if p.geometry, err = p.newStage(ShaderTypeGeometry, source); err != nil {
			return nil, err
		}
	}
	if containsStageDefine(source, ShaderTypeFragment) {
		if p.fragment, err = p.newStage(ShaderTypeFragment, source); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewProgramFromSeparate assembles a program from one source per stage. Empty geometry or
// fragment sources mean the stage is absent.
//
// Parameters:
//   - desc: the program description, used for display names
//   - vertex: the vertex source, required
//   - geometry: the geometry source, may be empty
//   - fragment: the fragment source, may be empty
//   - options: optional ProgramBuilderOption functions
//
// Returns:
//   - ProgramAssembler: the assembled stages, nil on error
//   - error: a *ShaderError wrapping ErrMissingRequiredStage if vertex is empty, or any stage validation error
func NewProgramFromSeparate(desc ProgramDescription, vertex, geometry, fragment string, options ...ProgramBuilderOption) (ProgramAssembler, error) {
	if vertex == "" {
		return nil, &ShaderError{Name: desc.stageName(ShaderTypeVertex), Type: ShaderTypeVertex, Err: ErrMissingRequiredStage}
	}

	p := newProgramAssembler(desc, options)

	var err error
	if p.vertex, err = p.newStage(ShaderTypeVertex, vertex); err != nil {
		return nil, err
	}
	if geometry != "" {
		if p.geometry, err = p.newStage(ShaderTypeGeometry, geometry); err != nil {
			return nil, err
		}
	}
	if fragment != "" {
		if p.fragment, err = p.newStage(ShaderTypeFragment, fragment); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *programAssembler) newStage(shaderType ShaderType, source string) (Stage, error) {
	return NewStage(shaderType, p.desc.stageName(shaderType), source, WithStageDiagnostics(p.diagnostics))
}

func (p *programAssembler) Description() ProgramDescription {
	return p.desc
}

func (p *programAssembler) Stage(shaderType ShaderType) Stage {
	switch shaderType {
	case ShaderTypeVertex:
		return p.vertex
	case ShaderTypeGeometry:
		return p.geometry
	case ShaderTypeFragment:
		return p.fragment
	default:
		return nil
	}
}

func (p *programAssembler) Create() AssembledProgram {
	out := AssembledProgram{
		Label:        p.desc.Label,
		VertexSource: p.vertex.Source(),
		Varyings:     []string{},
	}
	if p.geometry != nil {
		out.GeometrySource = p.geometry.Source()
	}

	if p.fragment != nil {
		out.FragmentSource = p.fragment.Source()
	} else if p.geometry != nil {
		out.Varyings = p.geometry.FindOutAttributes()
	} else {
		out.Varyings = p.vertex.FindOutAttributes()
	}

	slog.Debug("program assembled", "label", p.desc.Label, "stages", len(out.Stages()), "varyings", out.Varyings)
	return out
}
