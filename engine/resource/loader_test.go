package resource

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexOnlySource = "#version 330\nout vec3 color;\nvoid main(){}"
	fragmentSource   = "#version 330\nout vec4 fragColor;\nvoid main(){}"
	combinedSource   = `#version 330
#if defined VERTEX_SHADER
out vec3 v_color;
void main() {}
#elif defined FRAGMENT_SHADER
in vec3 v_color;
out vec4 fragColor;
void main() {}
#endif`
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFinder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, second, "effects/cube.glsl", combinedSource)
	writeFile(t, first, "shared.glsl", combinedSource)
	shadowed := writeFile(t, second, "shared.glsl", combinedSource)

	f := NewFinder(first, second)
	assert.Equal(t, []string{first, second}, f.Dirs())

	path, err := f.Find("effects/cube.glsl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "effects", "cube.glsl"), path)

	path, err = f.Find("shared.glsl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "shared.glsl"), path)

	path, err = f.Find(shadowed)
	require.NoError(t, err)
	assert.Equal(t, shadowed, path)

	_, err = f.Find("missing.glsl")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = f.Find("effects")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = f.Find("")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestLoadSingle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cube/cube.glsl", combinedSource)

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard))
	prog, err := l.Load(shader.ProgramDescription{Label: "cube", Path: "cube/cube.glsl"})
	require.NoError(t, err)

	assert.Equal(t, "cube", prog.Label)
	assert.False(t, prog.IsTransformFeedback())
	assert.Empty(t, prog.Varyings)
	assert.Contains(t, prog.VertexSource, "#define VERTEX_SHADER 1")
	assert.Contains(t, prog.FragmentSource, "#define FRAGMENT_SHADER 1")

	cached, ok := l.Get("cube")
	require.True(t, ok)
	assert.Equal(t, prog, cached)
	assert.Equal(t, []string{path}, l.Paths("cube"))
	assert.Equal(t, []string{"cube"}, l.Labels())

	desc, ok := l.Description("cube")
	require.True(t, ok)
	assert.Equal(t, "cube/cube.glsl", desc.Path)
}

func TestLoadSeparate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "particles/vs.glsl", vertexOnlySource)
	writeFile(t, dir, "particles/gs.glsl", "#version 330\nout vec3 out_pos;\nout vec3 out_vel;\nvoid main(){}")

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard), WithWorkers(2))
	prog, err := l.Load(shader.ProgramDescription{
		Label:          "particles",
		VertexShader:   "particles/vs.glsl",
		GeometryShader: "particles/gs.glsl",
	})
	require.NoError(t, err)
	assert.True(t, prog.IsTransformFeedback())
	assert.Equal(t, []string{"out_pos", "out_vel"}, prog.Varyings)
	assert.Len(t, l.Paths("particles"), 2)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.glsl", "void main(){}")
	writeFile(t, dir, "fs.glsl", fragmentSource)

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard))

	_, err := l.Load(shader.ProgramDescription{Path: "broken.glsl"})
	assert.ErrorIs(t, err, ErrMissingLabel)

	_, err = l.Load(shader.ProgramDescription{Label: "broken", Path: "broken.glsl"})
	assert.ErrorIs(t, err, shader.ErrMissingVersionDirective)

	_, err = l.Load(shader.ProgramDescription{Label: "missing", Path: "missing.glsl"})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = l.Load(shader.ProgramDescription{Label: "novs", FragmentShader: "fs.glsl"})
	assert.ErrorIs(t, err, shader.ErrMissingRequiredStage)

	assert.Empty(t, l.Labels())
	_, ok := l.Get("broken")
	assert.False(t, ok)
	assert.Equal(t, []string{filepath.Join(dir, "broken.glsl")}, l.Paths("broken"))
	assert.Nil(t, l.Paths("missing"))
	assert.Equal(t, []string{"broken", "missing", "novs"}, l.Described())

	desc, ok := l.Description("broken")
	require.True(t, ok)
	assert.Equal(t, "broken.glsl", desc.Path)
}

func TestFailedReloadKeepsKnownPaths(t *testing.T) {
	dir := t.TempDir()
	vs := writeFile(t, dir, "vs.glsl", vertexOnlySource)
	fs := writeFile(t, dir, "fs.glsl", fragmentSource)

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard))
	desc := shader.ProgramDescription{Label: "p", VertexShader: "vs.glsl", FragmentShader: "fs.glsl"}
	_, err := l.Load(desc)
	require.NoError(t, err)

	require.NoError(t, os.Remove(fs))
	_, err = l.Load(desc)
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, []string{vs, fs}, l.Paths("p"))

	prog, ok := l.Get("p")
	require.True(t, ok)
	assert.False(t, prog.IsTransformFeedback())
}

func TestLoadAllKeepsGoodPrograms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.glsl", combinedSource)
	writeFile(t, dir, "b.glsl", vertexOnlySource)
	writeFile(t, dir, "broken.glsl", "void main(){}")

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard), WithWorkers(3))
	programs, err := l.LoadAll([]shader.ProgramDescription{
		{Label: "a", Path: "a.glsl"},
		{Label: "broken", Path: "broken.glsl"},
		{Label: "b", Path: "b.glsl"},
		{Label: "a", Path: "b.glsl"},
		{Label: "missing", Path: "missing.glsl"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrMissingVersionDirective)
	assert.ErrorIs(t, err, ErrDuplicateLabel)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	require.Len(t, programs, 2)
	assert.Empty(t, programs["a"].Varyings)
	assert.Equal(t, []string{"color"}, programs["b"].Varyings)
	assert.Equal(t, []string{"a", "b"}, l.Labels())
	assert.Len(t, l.Programs(), 2)

	var se *shader.ShaderError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "broken.glsl", se.Name)
}

func TestLoadAllEmpty(t *testing.T) {
	l := NewLoader(NewFinder(t.TempDir()))
	programs, err := l.LoadAll(nil)
	assert.NoError(t, err)
	assert.Empty(t, programs)
}

func TestProgramsReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.glsl", vertexOnlySource)

	l := NewLoader(NewFinder(dir), WithDiagnostics(io.Discard))
	_, err := l.Load(shader.ProgramDescription{Label: "b", Path: "b.glsl"})
	require.NoError(t, err)

	programs := l.Programs()
	delete(programs, "b")
	_, ok := l.Get("b")
	assert.True(t, ok)
}
