package buffer_format

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("  3f 3f\t2f ")
	require.NoError(t, err)
	require.Len(t, l, 3)
	assert.Equal(t, uint64(32), l.Stride())
	assert.Equal(t, "3f4 3f4 2f4", l.String())
}

func TestParseLayoutErrors(t *testing.T) {
	_, err := ParseLayout("   ")
	assert.ErrorIs(t, err, ErrEmptyLayout)

	_, err = ParseLayout("3f 7q")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "attribute 1")
}

func TestVertexBufferLayout(t *testing.T) {
	l, err := ParseLayout("3f 4u1 2f2")
	require.NoError(t, err)

	vbl, err := l.VertexBufferLayout(2, wgpu.VertexStepModeInstance)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), vbl.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, vbl.StepMode)
	assert.Equal(t, []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 2},
		{Format: wgpu.VertexFormatUint8x4, Offset: 12, ShaderLocation: 3},
		{Format: wgpu.VertexFormatFloat16x2, Offset: 16, ShaderLocation: 4},
	}, vbl.Attributes)
}

func TestVertexBufferLayoutUnsupported(t *testing.T) {
	l, err := ParseLayout("3f 3u1")
	require.NoError(t, err)

	_, err = l.VertexBufferLayout(0, wgpu.VertexStepModeVertex)
	assert.ErrorIs(t, err, ErrNoVertexFormat)
}

func TestPaddedFormat(t *testing.T) {
	l, err := ParseLayout("3f 3f 2f")
	require.NoError(t, err)

	assert.Equal(t, "3f4 3x4 2f4", l.PaddedFormat([]bool{true, false, true}))
	assert.Equal(t, "3f4 3f4 2f4", l.PaddedFormat(nil))
	assert.Equal(t, "3x4 3f4 2f4", l.PaddedFormat([]bool{false}))
}
