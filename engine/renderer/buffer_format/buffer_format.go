// buffer_format.go holds the process-wide buffer format catalog. Short, human written
// tokens such as "3f" or "4u1" describe a single vertex attribute: its component count,
// element kind and byte width. The catalog translates them into both the GPU vertex
// format and the pad token used when packing buffers by hand.
//
// Token grammar: [1-4][f|u|i][1|2|4]? where the byte width defaults to 4.
// f1 is an unsigned normalized byte, f2 is a half float.
package buffer_format

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/demosys-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnknownFormat is wrapped by every UnknownFormatError.
var ErrUnknownFormat = errors.New("buffer format not recognized")

// UnknownFormatError is returned by Lookup when a token is not part of the catalog.
// Its message lists every valid token.
type UnknownFormatError struct {
	Token string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("buffer format %q unknown. Valid formats: %s", e.Token, strings.Join(Tokens(), ", "))
}

func (e *UnknownFormatError) Unwrap() error {
	return ErrUnknownFormat
}

// Format describes the memory layout of one vertex attribute.
type Format struct {
	// Tag is the element kind followed by its byte width, e.g. "f4", "u1", "i2".
	Tag string

	// Components is the number of components in the attribute, 1 through 4.
	Components int

	// BytesPerComponent is the byte width of a single component: 1, 2 or 4.
	BytesPerComponent int
}

// FormatToken returns the canonical GPU format token, the component count followed by the tag (e.g. "3f4").
func (f Format) FormatToken() string {
	return fmt.Sprintf("%d%s", f.Components, f.Tag)
}

// PadToken returns the padding token used for manual buffer packing (e.g. "3x4").
func (f Format) PadToken() string {
	return fmt.Sprintf("%dx%d", f.Components, f.BytesPerComponent)
}

// Size returns the total byte size of the attribute.
func (f Format) Size() uint64 {
	return uint64(f.Components * f.BytesPerComponent)
}

// Kind returns the element kind of the format without its byte width: 'f', 'u' or 'i'.
func (f Format) Kind() byte {
	if f.Tag == "" {
		return 0
	}
	return f.Tag[0]
}

func (f Format) String() string {
	return fmt.Sprintf("<Format %s %d %d>", f.FormatToken(), f.Components, f.BytesPerComponent)
}

// VertexFormat maps the format onto its WebGPU vertex format.
// WebGPU has no single or three component 8 and 16 bit formats, those map to wgpu.VertexFormatUndefined.
//
// Returns:
//   - wgpu.VertexFormat: the matching vertex format or wgpu.VertexFormatUndefined
func (f Format) VertexFormat() wgpu.VertexFormat {
	byComponents, ok := tagVertexFormatMap[f.Tag]
	if !ok || f.Components < 1 || f.Components > 4 {
		return wgpu.VertexFormatUndefined
	}
	return byComponents[f.Components-1]
}

// tagVertexFormatMap maps a format tag to the wgpu vertex formats for 1 through 4 components.
var tagVertexFormatMap = map[string][4]wgpu.VertexFormat{
	"f1": {wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm8x4},
	"f2": {wgpu.VertexFormatUndefined, wgpu.VertexFormatFloat16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatFloat16x4},
	"f4": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"u1": {wgpu.VertexFormatUndefined, wgpu.VertexFormatUint8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint8x4},
	"u2": {wgpu.VertexFormatUndefined, wgpu.VertexFormatUint16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint16x4},
	"u4": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
	"i1": {wgpu.VertexFormatUndefined, wgpu.VertexFormatSint8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint8x4},
	"i2": {wgpu.VertexFormatUndefined, wgpu.VertexFormatSint16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint16x4},
	"i4": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
}

// catalog is populated once during package initialization and only read afterwards.
var catalog = buildCatalog()

// catalogTokens is the sorted list of every key in catalog.
var catalogTokens = common.SortedKeys(catalog)

// buildCatalog creates every count/kind/width combination plus the bare short tokens
// ("3f", "2u", ...) which alias the 4 byte entries.
func buildCatalog() map[string]Format {
	formats := make(map[string]Format, 48)
	for _, kind := range []byte{'f', 'u', 'i'} {
		for _, width := range []int{1, 2, 4} {
			tag := fmt.Sprintf("%c%d", kind, width)
			for count := 1; count <= 4; count++ {
				f := Format{Tag: tag, Components: count, BytesPerComponent: width}
				formats[f.FormatToken()] = f
				if width == 4 {
					formats[fmt.Sprintf("%d%c", count, kind)] = f
				}
			}
		}
	}
	return formats
}

// Lookup returns the format registered for a buffer format token.
//
// Parameters:
//   - token: a short format token such as "3f", "2f2" or "4u1"
//
// Returns:
//   - Format: the catalog entry for the token
//   - error: an *UnknownFormatError listing every valid token if the token is not in the catalog
func Lookup(token string) (Format, error) {
	f, ok := catalog[token]
	if !ok {
		return Format{}, &UnknownFormatError{Token: token}
	}
	return f, nil
}

// MustLookup is like Lookup but panics if the token is unknown.
// Intended for package-level tables built from literal tokens.
func MustLookup(token string) Format {
	f, err := Lookup(token)
	if err != nil {
		panic(err)
	}
	return f
}

// Tokens returns every valid buffer format token in sorted order.
// The returned slice is a copy and may be modified by the caller.
func Tokens() []string {
	return slices.Clone(catalogTokens)
}
