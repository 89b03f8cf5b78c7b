package buffer_format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrEmptyLayout is returned when a layout string contains no format tokens.
	ErrEmptyLayout = errors.New("buffer layout has no attributes")

	// ErrNoVertexFormat is returned when an attribute has no WebGPU vertex format equivalent.
	ErrNoVertexFormat = errors.New("buffer format has no vertex format equivalent")
)

// Layout is an ordered list of interleaved vertex attributes sharing one buffer.
type Layout []Format

// ParseLayout parses a whitespace separated list of buffer format tokens, e.g. "3f 3f 2f".
//
// Parameters:
//   - spec: the layout string
//
// Returns:
//   - Layout: the attributes in declaration order
//   - error: ErrEmptyLayout for an empty string, or the first Lookup error encountered
func ParseLayout(spec string) (Layout, error) {
	tokens := strings.Fields(spec)
	if len(tokens) == 0 {
		return nil, ErrEmptyLayout
	}

	layout := make(Layout, 0, len(tokens))
	for i, token := range tokens {
		f, err := Lookup(token)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		layout = append(layout, f)
	}
	return layout, nil
}

// Stride returns the byte size of one interleaved vertex.
func (l Layout) Stride() uint64 {
	var stride uint64
	for _, f := range l {
		stride += f.Size()
	}
	return stride
}

// String returns the canonical format tokens joined by spaces.
func (l Layout) String() string {
	tokens := make([]string, len(l))
	for i, f := range l {
		tokens[i] = f.FormatToken()
	}
	return strings.Join(tokens, " ")
}

// VertexBufferLayout converts the layout into a wgpu.VertexBufferLayout. Attribute offsets
// are sequential and shader locations are assigned consecutively starting at firstLocation.
//
// Parameters:
//   - firstLocation: the shader location of the first attribute
//   - stepMode: whether the buffer advances per vertex or per instance
//
// Returns:
//   - wgpu.VertexBufferLayout: the vertex buffer layout
//   - error: wraps ErrNoVertexFormat if an attribute cannot be expressed as a WebGPU vertex format
func (l Layout) VertexBufferLayout(firstLocation uint32, stepMode wgpu.VertexStepMode) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(l))
	var offset uint64

	for i, f := range l {
		vf := f.VertexFormat()
		if vf == wgpu.VertexFormatUndefined {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("attribute %d (%s): %w", i, f.FormatToken(), ErrNoVertexFormat)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vf,
			Offset:         offset,
			ShaderLocation: firstLocation + uint32(i),
		})
		offset += f.Size()
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    stepMode,
		Attributes:  attrs,
	}, nil
}

// PaddedFormat returns the buffer format string used when binding the buffer to a program
// that only consumes some of its attributes. Attributes marked unused are replaced by their
// pad token so the stride stays intact. A nil or short used slice treats missing entries as used.
//
// Parameters:
//   - used: per attribute flag, true if the program reads the attribute
//
// Returns:
//   - string: e.g. "3f4 3x4 2f4"
func (l Layout) PaddedFormat(used []bool) string {
	tokens := make([]string, len(l))
	for i, f := range l {
		if i < len(used) && !used[i] {
			tokens[i] = f.PadToken()
			continue
		}
		tokens[i] = f.FormatToken()
	}
	return strings.Join(tokens, " ")
}
