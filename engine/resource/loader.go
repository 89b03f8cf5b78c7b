package resource

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/demosys-go/common"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
)

var (
	// ErrMissingLabel is returned when a program description has no label.
	ErrMissingLabel = errors.New("program description has no label")

	// ErrDuplicateLabel is returned by LoadAll when two descriptions share a label.
	ErrDuplicateLabel = errors.New("duplicate program label")
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	finder Finder

	programs     map[string]shader.AssembledProgram
	descriptions map[string]shader.ProgramDescription
	paths        map[string][]string

	workers     int
	pool        worker.DynamicWorkerPool
	diagnostics io.Writer
}

// Loader reads shader sources for program descriptions, assembles them and caches the
// results by label. Linking is left to the caller since it needs the GL thread.
type Loader interface {
	// Load reads the sources referenced by desc, assembles the program and caches it.
	// A description with Path set is loaded as one combined source, otherwise each stage
	// path is read separately. A previously cached program with the same label is replaced.
	//
	// Parameters:
	//   - desc: the program description
	//
	// Returns:
	//   - shader.AssembledProgram: the assembled program
	//   - error: error if a source cannot be found or read, or if assembly fails
	Load(desc shader.ProgramDescription) (shader.AssembledProgram, error)

	// LoadAll assembles every description concurrently on the loader's worker pool. A failing
	// program does not stop the others: every successfully assembled program is returned and
	// cached, and the failures are returned joined in input order.
	//
	// Parameters:
	//   - descs: the program descriptions
	//
	// Returns:
	//   - map[string]shader.AssembledProgram: the assembled programs keyed by label
	//   - error: the joined errors of every failed program, nil if all succeeded
	LoadAll(descs []shader.ProgramDescription) (map[string]shader.AssembledProgram, error)

	// Get retrieves a cached program by label.
	//
	// Parameters:
	//   - label: the program label
	//
	// Returns:
	//   - shader.AssembledProgram: the cached program
	//   - bool: false if no program with that label is cached
	Get(label string) (shader.AssembledProgram, bool)

	// Description retrieves the description last passed to Load for a label, whether or not
	// the program assembled.
	//
	// Parameters:
	//   - label: the program label
	//
	// Returns:
	//   - shader.ProgramDescription: the description
	//   - bool: false if Load was never called with that label
	Description(label string) (shader.ProgramDescription, bool)

	// Paths returns the resolved files backing a program. Files resolved before a failed
	// assembly are kept so a broken source can be watched and retried.
	//
	// Parameters:
	//   - label: the program label
	//
	// Returns:
	//   - []string: absolute file paths, nil if the label is unknown
	Paths(label string) []string

	// Labels returns the labels of every cached program, sorted.
	//
	// Returns:
	//   - []string: the cached labels
	Labels() []string

	// Described returns the labels of every description Load has seen, sorted. It includes
	// programs that failed to assemble and have no cache entry.
	//
	// Returns:
	//   - []string: the described labels
	Described() []string

	// Programs returns a copy of the program cache.
	//
	// Returns:
	//   - map[string]shader.AssembledProgram: cached programs keyed by label
	Programs() map[string]shader.AssembledProgram
}

var _ Loader = &loader{}

// NewLoader creates a Loader resolving sources through finder.
//
// Parameters:
//   - finder: the Finder used to resolve source paths
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the loader
func NewLoader(finder Finder, options ...LoaderBuilderOption) Loader {
	l := &loader{
		finder:       finder,
		programs:     make(map[string]shader.AssembledProgram),
		descriptions: make(map[string]shader.ProgramDescription),
		paths:        make(map[string][]string),
		workers:      max(runtime.NumCPU()-1, 1),
		diagnostics:  os.Stderr,
	}

	for _, option := range options {
		option(l)
	}

	// Programs are assembled in bursts at startup and on reload, idle workers exit after a second.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(desc shader.ProgramDescription) (shader.AssembledProgram, error) {
	if desc.Label == "" {
		return shader.AssembledProgram{}, ErrMissingLabel
	}

	assembler, paths, err := l.assemble(desc)
	if err != nil {
		l.mu.Lock()
		l.descriptions[desc.Label] = desc
		// keep the previously known files so a missing source does not drop the watch
		for _, path := range paths {
			if !slices.Contains(l.paths[desc.Label], path) {
				l.paths[desc.Label] = append(l.paths[desc.Label], path)
			}
		}
		l.mu.Unlock()
		return shader.AssembledProgram{}, fmt.Errorf("program %q: %w", desc.Label, err)
	}
	prog := assembler.Create()

	l.mu.Lock()
	l.programs[desc.Label] = prog
	l.descriptions[desc.Label] = desc
	l.paths[desc.Label] = paths
	l.mu.Unlock()

	slog.Info("program loaded", "label", desc.Label, "stages", len(prog.Stages()), "transform_feedback", prog.IsTransformFeedback(), "varyings", prog.Varyings)
	return prog, nil
}

// assemble reads the sources for desc and builds its stages. The files resolved so far are
// returned even when assembly fails.
func (l *loader) assemble(desc shader.ProgramDescription) (shader.ProgramAssembler, []string, error) {
	opts := []shader.ProgramBuilderOption{shader.WithProgramDiagnostics(l.diagnostics)}

	if desc.IsSingle() {
		source, path, err := l.read(desc.Path)
		if err != nil {
			return nil, nil, err
		}
		p, err := shader.NewProgramFromSingle(desc, source, opts...)
		return p, []string{path}, err
	}

	var paths []string
	sources := make([]string, 3)
	for i, rel := range []string{desc.VertexShader, desc.GeometryShader, desc.FragmentShader} {
		if rel == "" {
			continue
		}
		source, path, err := l.read(rel)
		if err != nil {
			return nil, paths, err
		}
		sources[i] = source
		paths = append(paths, path)
	}

	p, err := shader.NewProgramFromSeparate(desc, sources[0], sources[1], sources[2], opts...)
	return p, paths, err
}

func (l *loader) read(rel string) (string, string, error) {
	path, err := l.finder.Find(rel)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read shader source %q: %w", path, err)
	}
	return string(data), path, nil
}

func (l *loader) LoadAll(descs []shader.ProgramDescription) (map[string]shader.AssembledProgram, error) {
	errs := make([]error, len(descs))
	results := make(map[string]shader.AssembledProgram, len(descs))
	var resultsMu sync.Mutex

	seen := make(map[string]bool, len(descs))
	var wg sync.WaitGroup
	for i, desc := range descs {
		if desc.Label != "" && seen[desc.Label] {
			errs[i] = fmt.Errorf("program %q: %w", desc.Label, ErrDuplicateLabel)
			continue
		}
		seen[desc.Label] = true

		wg.Add(1)
		d := desc
		idx := i
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()

				prog, err := l.Load(d)
				if err != nil {
					errs[idx] = err
					return nil, err
				}
				resultsMu.Lock()
				results[d.Label] = prog
				resultsMu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		slog.Error("some programs failed to load", "loaded", len(results), "requested", len(descs), "error", err)
	}
	return results, err
}

func (l *loader) Get(label string) (shader.AssembledProgram, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.programs[label]
	return p, ok
}

func (l *loader) Description(label string) (shader.ProgramDescription, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.descriptions[label]
	return d, ok
}

func (l *loader) Paths(label string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.paths[label])
}

func (l *loader) Labels() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return common.SortedKeys(l.programs)
}

func (l *loader) Described() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return common.SortedKeys(l.descriptions)
}

func (l *loader) Programs() map[string]shader.AssembledProgram {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.programs)
}
