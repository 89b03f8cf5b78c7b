package effect

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/demosys-go/common"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
)

var (
	// ErrUnknownEffect is returned when no factory is registered under a name.
	ErrUnknownEffect = errors.New("unknown effect")

	// ErrDuplicateEffect is returned when a name is registered twice.
	ErrDuplicateEffect = errors.New("effect already registered")

	// ErrInvalidEffect is returned for empty names or nil factories.
	ErrInvalidEffect = errors.New("invalid effect registration")
)

// Registry maps effect names to the factories creating them.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Default is the registry used by the package level Register function. Effect packages
// register themselves from init.
var Default = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds an effect factory to the Default registry.
func Register(name string, factory Factory) error {
	return Default.Register(name, factory)
}

// Register adds an effect factory under name.
//
// Parameters:
//   - name: the effect name
//   - factory: the function creating new instances
//
// Returns:
//   - error: ErrInvalidEffect for an empty name or nil factory, ErrDuplicateEffect if the name is taken
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%q: %w", name, ErrInvalidEffect)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicateEffect)
	}
	r.factories[name] = factory
	slog.Debug("effect registered", "name", name)
	return nil
}

// New creates an instance of the effect registered under name.
//
// Parameters:
//   - name: the effect name
//
// Returns:
//   - Effect: the new effect instance
//   - error: wraps ErrUnknownEffect if the name is not registered
func (r *Registry) New(name string) (Effect, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownEffect)
	}
	return factory(), nil
}

// Names returns every registered effect name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return common.SortedKeys(r.factories)
}

// Populate instantiates the listed effects in order.
//
// Parameters:
//   - names: the effect names, usually from the project configuration
//
// Returns:
//   - []Effect: the effect instances in the order of names
//   - error: the joined errors for every unknown name, no effects are returned in that case
func (r *Registry) Populate(names []string) ([]Effect, error) {
	effects := make([]Effect, 0, len(names))
	var errs []error
	for _, name := range names {
		e, err := r.New(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		effects = append(effects, e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return effects, nil
}

// Programs collects the program descriptions requested by every effect implementing
// ProgramProvider, in effect order.
//
// Parameters:
//   - effects: the effect instances
//
// Returns:
//   - []shader.ProgramDescription: the requested program descriptions
func (r *Registry) Programs(effects []Effect) []shader.ProgramDescription {
	var descs []shader.ProgramDescription
	for _, e := range effects {
		if pp, ok := e.(ProgramProvider); ok {
			descs = append(descs, pp.Programs()...)
		}
	}
	return descs
}

// PostLoad calls PostLoad on every effect in order once their resources are loaded. A failing
// effect does not stop the others.
//
// Parameters:
//   - effects: the effect instances
//
// Returns:
//   - error: the joined errors of every failing effect, each naming the effect
func (r *Registry) PostLoad(effects []Effect) error {
	var errs []error
	for _, e := range effects {
		if err := e.PostLoad(); err != nil {
			errs = append(errs, fmt.Errorf("effect %q: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
