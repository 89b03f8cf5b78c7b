package buffer_format

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupShortTokens(t *testing.T) {
	f, err := Lookup("3f")
	require.NoError(t, err)
	assert.Equal(t, "3f4", f.FormatToken())
	assert.Equal(t, "3x4", f.PadToken())
	assert.Equal(t, 3, f.Components)
	assert.Equal(t, 4, f.BytesPerComponent)
	assert.Equal(t, uint64(12), f.Size())
	assert.Equal(t, byte('f'), f.Kind())

	long, err := Lookup("3f4")
	require.NoError(t, err)
	assert.Equal(t, f, long)
}

func TestLookupExplicitWidths(t *testing.T) {
	tests := []struct {
		token  string
		format string
		pad    string
	}{
		{"1f1", "1f1", "1x1"},
		{"2f2", "2f2", "2x2"},
		{"4u1", "4u1", "4x1"},
		{"2u2", "2u2", "2x2"},
		{"3i2", "3i2", "3x2"},
		{"4i4", "4i4", "4x4"},
		{"2u", "2u4", "2x4"},
		{"1i", "1i4", "1x4"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			f, err := Lookup(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.format, f.FormatToken())
			assert.Equal(t, tt.pad, f.PadToken())
		})
	}
}

func TestCatalogIsExhaustive(t *testing.T) {
	tokens := Tokens()
	// 3 kinds * 3 widths * 4 counts, plus 12 bare aliases
	assert.Len(t, tokens, 48)

	for _, kind := range []string{"f", "u", "i"} {
		for count := 1; count <= 4; count++ {
			for _, width := range []int{1, 2, 4} {
				token := fmt.Sprintf("%d%s%d", count, kind, width)
				f, err := Lookup(token)
				require.NoError(t, err, token)
				assert.Equal(t, token, f.FormatToken())
				assert.Equal(t, fmt.Sprintf("%dx%d", count, width), f.PadToken())
			}

			bare := fmt.Sprintf("%d%s", count, kind)
			f, err := Lookup(bare)
			require.NoError(t, err, bare)
			assert.Equal(t, 4, f.BytesPerComponent)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, token := range []string{"", "5f", "3x", "3f3", "f3", "3F"} {
		_, err := Lookup(token)
		require.Error(t, err, token)
		assert.True(t, errors.Is(err, ErrUnknownFormat))

		var ufe *UnknownFormatError
		require.ErrorAs(t, err, &ufe)
		assert.Equal(t, token, ufe.Token)

		for _, valid := range Tokens() {
			assert.Contains(t, err.Error(), valid)
		}
	}
}

func TestMustLookupPanics(t *testing.T) {
	assert.NotPanics(t, func() { MustLookup("4f") })
	assert.Panics(t, func() { MustLookup("nope") })
}

func TestTokensReturnsCopy(t *testing.T) {
	tokens := Tokens()
	tokens[0] = "mutated"
	assert.NotEqual(t, "mutated", Tokens()[0])
}

func TestVertexFormat(t *testing.T) {
	assert.Equal(t, wgpu.VertexFormatFloat32x3, MustLookup("3f").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatFloat32, MustLookup("1f4").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatFloat16x4, MustLookup("4f2").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatUnorm8x4, MustLookup("4f1").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatUint8x2, MustLookup("2u1").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatSint32x4, MustLookup("4i").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatUndefined, MustLookup("3u1").VertexFormat())
	assert.Equal(t, wgpu.VertexFormatUndefined, Format{}.VertexFormat())
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "<Format 2f4 2 4>", MustLookup("2f").String())
}
