// Package linker compiles assembled shader programs into linked OpenGL program objects.
// Every call requires a current OpenGL 4.1 core context on the calling goroutine's OS thread,
// see the window package.
package linker

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	// ErrCompile is wrapped by errors returned when a stage fails to compile.
	ErrCompile = errors.New("shader compilation failed")

	// ErrLink is wrapped by errors returned when a program fails to link.
	ErrLink = errors.New("program link failed")
)

// glStageTypes maps the stages an assembled program can hold to their GL shader object types.
var glStageTypes = map[shader.ShaderType]uint32{
	shader.ShaderTypeVertex:   gl.VERTEX_SHADER,
	shader.ShaderTypeGeometry: gl.GEOMETRY_SHADER,
	shader.ShaderTypeFragment: gl.FRAGMENT_SHADER,
}

// Program is a linked GPU program object.
type Program interface {
	// Handle returns the GL program name.
	Handle() uint32

	// Label returns the label of the program description it was linked from.
	Label() string

	// Varyings returns the output attributes registered for transform feedback, empty for rasterization programs.
	Varyings() []string

	// Delete releases the GL program object.
	Delete()
}

// Linker defines the GPU link boundary consuming assembled programs.
type Linker interface {
	// Link compiles every stage present in the assembled program, registers its varyings
	// for interleaved transform feedback capture and links the program.
	//
	// Parameters:
	//   - p: the assembled program sources and varyings
	//
	// Returns:
	//   - Program: the linked program
	//   - error: wraps ErrCompile or ErrLink with the driver info log
	Link(p shader.AssembledProgram) (Program, error)
}

type program struct {
	handle   uint32
	label    string
	varyings []string
}

func (p *program) Handle() uint32 {
	return p.handle
}

func (p *program) Label() string {
	return p.label
}

func (p *program) Varyings() []string {
	return slices.Clone(p.varyings)
}

func (p *program) Delete() {
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

type glLinker struct{}

var _ Linker = &glLinker{}

// NewGLLinker creates a Linker backed by the current OpenGL context.
func NewGLLinker() Linker {
	return &glLinker{}
}

func (l *glLinker) Link(p shader.AssembledProgram) (Program, error) {
	handle := gl.CreateProgram()

	var shaders []uint32
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()

	for _, st := range p.Stages() {
		s, err := compileShader(p.Source(st), glStageTypes[st])
		if err != nil {
			gl.DeleteProgram(handle)
			return nil, fmt.Errorf("program %q: %s shader: %w", p.Label, st, err)
		}
		gl.AttachShader(handle, s)
		shaders = append(shaders, s)
	}

	if len(p.Varyings) > 0 {
		cstrs, free := gl.Strs(terminated(p.Varyings)...)
		gl.TransformFeedbackVaryings(handle, int32(len(p.Varyings)), cstrs, gl.INTERLEAVED_ATTRIBS)
		free()
	}

	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLen)
		info := infoLog(logLen, func(buf *uint8) { gl.GetProgramInfoLog(handle, logLen, nil, buf) })
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("program %q: %w: %s", p.Label, ErrLink, info)
	}

	for _, s := range shaders {
		gl.DetachShader(handle, s)
	}

	slog.Info("program linked", "label", p.Label, "handle", handle, "varyings", p.Varyings)
	return &program{
		handle:   handle,
		label:    p.Label,
		varyings: slices.Clone(p.Varyings),
	}, nil
}

// compileShader compiles a single shader object of the given GL type.
func compileShader(source string, shaderType uint32) (uint32, error) {
	s := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csource, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLen)
		info := infoLog(logLen, func(buf *uint8) { gl.GetShaderInfoLog(s, logLen, nil, buf) })
		gl.DeleteShader(s)
		return 0, fmt.Errorf("%w: %s", ErrCompile, info)
	}
	return s, nil
}

func infoLog(length int32, read func(*uint8)) string {
	if length <= 0 {
		return ""
	}
	buf := make([]uint8, length)
	read(&buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

// terminated returns copies of names with a trailing NUL as expected by gl.Strs.
func terminated(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + "\x00"
	}
	return out
}
