package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVersionDirective is returned when a stage source does not start with #version.
	ErrMissingVersionDirective = errors.New("missing #version, a version must be defined in the first line")

	// ErrMissingRequiredStage is returned when a program is assembled without a vertex source.
	ErrMissingRequiredStage = errors.New("missing required vertex shader source")
)

// ShaderError reports a shader authoring problem for a named stage.
// Use errors.Is with ErrMissingVersionDirective or ErrMissingRequiredStage to tell the kinds apart.
type ShaderError struct {
	// Name is the display name of the offending stage.
	Name string

	// Type is the stage the error refers to.
	Type ShaderType

	// Err is the underlying error kind.
	Err error
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%s shader %q: %v", e.Type, e.Name, e.Err)
}

func (e *ShaderError) Unwrap() error {
	return e.Err
}
