// pre_processor.go implements the line oriented source preparation shared by every stage.
// Sources are handled as an ordered list of lines: the whole text is trimmed, split on "\n",
// checked for a leading #version directive and given a stage define on line 1 so one shared
// source can branch per stage with #ifdef VERTEX_SHADER / GEOMETRY_SHADER / FRAGMENT_SHADER.
package shader

import (
	"fmt"
	"strings"
)

const (
	// versionDirective must start the first line of every stage source.
	versionDirective = "#version"

	// outQualifier marks an output attribute declaration when it starts a trimmed line.
	outQualifier = "out "
)

// splitSource trims surrounding whitespace from the whole source and splits it into lines.
//
// Parameters:
//   - source: the raw shader source
//
// Returns:
//   - []string: the source lines, never empty
func splitSource(source string) []string {
	return strings.Split(strings.TrimSpace(source), "\n")
}

// hasVersionDirective reports whether the first line starts with a #version directive.
func hasVersionDirective(lines []string) bool {
	return len(lines) > 0 && strings.HasPrefix(lines[0], versionDirective)
}

// injectStageDefine returns a new line slice with `#define <STAGE> 1` inserted at index 1.
//
// Parameters:
//   - lines: the validated source lines, line 0 being the #version directive
//   - shaderType: the stage whose macro is defined
//
// Returns:
//   - []string: the processed lines
func injectStageDefine(lines []string, shaderType ShaderType) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[0])
	out = append(out, fmt.Sprintf("#define %s 1", shaderType.Define()))
	return append(out, lines[1:]...)
}

// parseOutAttribute extracts the attribute name from an `out <type> <name>;` line.
// Only the first name of a comma separated declaration is returned.
//
// Parameters:
//   - line: a single source line
//
// Returns:
//   - string: the attribute name
//   - bool: false if the line is not an output declaration with at least three fields
func parseOutAttribute(line string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), outQualifier) {
		return "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", false
	}
	name, _, _ := strings.Cut(fields[2], ",")
	return strings.ReplaceAll(name, ";", ""), true
}

// containsStageDefine reports whether a raw combined source mentions the stage's macro anywhere,
// comments and string literals included.
func containsStageDefine(source string, shaderType ShaderType) bool {
	return strings.Contains(source, shaderType.Define())
}
