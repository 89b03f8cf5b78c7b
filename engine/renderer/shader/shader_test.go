package shader

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStageInjectsDefine(t *testing.T) {
	s, err := NewStage(ShaderTypeVertex, "simple.glsl", "#version 330\nvoid main(){}")
	require.NoError(t, err)

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "#version 330", lines[0])
	assert.Equal(t, "#define VERTEX_SHADER 1", lines[1])
	assert.Equal(t, "void main(){}", lines[2])
	assert.Equal(t, 1, strings.Count(s.Source(), "#define VERTEX_SHADER 1"))
	assert.Equal(t, strings.Join(lines, "\n"), s.Source())
	assert.Equal(t, ShaderTypeVertex, s.Type())
	assert.Equal(t, "simple.glsl", s.Name())
}

func TestNewStageTrimsSource(t *testing.T) {
	s, err := NewStage(ShaderTypeFragment, "padded", "\n\n   #version 410\nvoid main(){}\n\n  ")
	require.NoError(t, err)
	assert.Equal(t, "#version 410\n#define FRAGMENT_SHADER 1\nvoid main(){}", s.Source())
}

func TestNewStageMissingVersion(t *testing.T) {
	var diag bytes.Buffer
	s, err := NewStage(ShaderTypeGeometry, "broken.glsl", "\n// comment\n#version 330\nvoid main(){}", WithStageDiagnostics(&diag))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrMissingVersionDirective))

	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "broken.glsl", se.Name)
	assert.Equal(t, ShaderTypeGeometry, se.Type)
	assert.Contains(t, err.Error(), "broken.glsl")

	assert.Equal(t, "---[ START broken.glsl ]---\n"+
		"000: // comment\n"+
		"001: #version 330\n"+
		"002: void main(){}\n"+
		"---[ END broken.glsl ]---\n", diag.String())
}

func TestNewStageNilDiagnostics(t *testing.T) {
	_, err := NewStage(ShaderTypeVertex, "empty", "", WithStageDiagnostics(nil))
	assert.ErrorIs(t, err, ErrMissingVersionDirective)
}

func TestStageLinesReturnsCopy(t *testing.T) {
	s, err := NewStage(ShaderTypeVertex, "copy", "#version 330\nvoid main(){}")
	require.NoError(t, err)

	lines := s.Lines()
	lines[1] = "mutated"
	assert.Equal(t, "#define VERTEX_SHADER 1", s.Lines()[1])
}

func TestFindOutAttributes(t *testing.T) {
	src := `#version 330
in vec3 in_position;
out vec3 out_position;
  out vec4 fragColor;
	out float  life ;
out vec2 first, second;
out int a,b;
// out vec3 commented;
layout(location = 0) out vec4 ignored;
out vec3 out_position;
out vec3;
void main() {
    out_position = in_position;
}`
	s, err := NewStage(ShaderTypeVertex, "outs", src)
	require.NoError(t, err)

	assert.Equal(t, []string{"out_position", "fragColor", "life", "first", "a", "out_position"}, s.FindOutAttributes())
}

func TestFindOutAttributesNone(t *testing.T) {
	s, err := NewStage(ShaderTypeVertex, "none", "#version 330\nvoid main(){}")
	require.NoError(t, err)
	assert.NotNil(t, s.FindOutAttributes())
	assert.Empty(t, s.FindOutAttributes())
}

func TestStageDump(t *testing.T) {
	s, err := NewStage(ShaderTypeCompute, "cs", "#version 430\nvoid main(){}")
	require.NoError(t, err)

	var buf bytes.Buffer
	s.Dump(&buf)
	assert.Equal(t, "---[ START cs ]---\n000: #version 430\n001: #define COMPUTE_SHADER 1\n002: void main(){}\n---[ END cs ]---\n", buf.String())
}

func TestShaderTypeDefines(t *testing.T) {
	assert.Equal(t, "VERTEX_SHADER", ShaderTypeVertex.Define())
	assert.Equal(t, "GEOMETRY_SHADER", ShaderTypeGeometry.Define())
	assert.Equal(t, "FRAGMENT_SHADER", ShaderTypeFragment.Define())
	assert.Equal(t, "TESS_CONTROL_SHADER", ShaderTypeTessControl.Define())
	assert.Equal(t, "TESS_EVALUATION_SHADER", ShaderTypeTessEvaluation.Define())
	assert.Equal(t, "COMPUTE_SHADER", ShaderTypeCompute.Define())

	assert.Equal(t, "tess_evaluation", ShaderTypeTessEvaluation.String())
	assert.Equal(t, "ShaderType(42)", ShaderType(42).String())
}
