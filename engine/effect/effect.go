package effect

import (
	"path"

	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
)

// Target is the framebuffer an effect draws into.
type Target interface {
	// Use binds the target for drawing.
	Use()
}

// Effect is a pluggable unit of a demo. Effects are registered by name and instantiated
// through their Factory when a project lists them.
type Effect interface {
	// Name returns the registered name of the effect.
	//
	// Returns:
	//   - string: the effect name, also used as its resource namespace
	Name() string

	// PostLoad is called once every effect and resource is loaded, before the first Draw.
	//
	// Returns:
	//   - error: error if the effect cannot run
	PostLoad() error

	// Draw renders one frame.
	//
	// Parameters:
	//   - time: the current time in seconds
	//   - frameTime: the duration of the previous frame in seconds
	//   - target: the framebuffer to draw into
	Draw(time, frameTime float64, target Target)
}

// ProgramProvider is implemented by effects that need shader programs loaded for them.
type ProgramProvider interface {
	// Programs returns the descriptions of the programs the effect uses.
	//
	// Returns:
	//   - []shader.ProgramDescription: the program descriptions
	Programs() []shader.ProgramDescription
}

// Factory creates a new instance of an effect.
type Factory func() Effect

// ResolvePath returns the resource path for label. When local is true the label is placed
// inside the effect's namespace directory.
//
// Parameters:
//   - label: the resource path as written by the effect
//   - local: whether to prefix the namespace
//   - namespace: the effect namespace, usually its name
//
// Returns:
//   - string: the resolved resource path, always using forward slashes
func ResolvePath(label string, local bool, namespace string) string {
	if !local || namespace == "" {
		return label
	}
	return path.Join(namespace, label)
}
