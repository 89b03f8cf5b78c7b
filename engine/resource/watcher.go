package resource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/demosys-go/common"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the result of reassembling a program after one of its sources changed.
// On failure the previously cached program stays in the loader and err is non-nil.
type ReloadFunc func(label string, program shader.AssembledProgram, err error)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	loader   Loader
	fs       *fsnotify.Watcher
	onReload ReloadFunc

	// labelsByPath maps a cleaned absolute source path to the labels of the programs reading it.
	labelsByPath map[string][]string
}

// Watcher reassembles programs whenever one of their source files changes on disk.
type Watcher interface {
	// Run processes file system events until ctx is done. The underlying file system watcher
	// is closed when Run returns.
	//
	// Parameters:
	//   - ctx: the context controlling the lifetime of the watch loop
	//
	// Returns:
	//   - error: ctx.Err() once the context is done, or an error if the event stream closes unexpectedly
	Run(ctx context.Context) error

	// Files returns the source files being watched, sorted.
	//
	// Returns:
	//   - []string: absolute paths of the watched files
	Files() []string
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher for every program the loader has seen at call time, including
// programs whose sources failed to assemble so that fixing them reloads them. The
// parent directories of all source files are registered before NewWatcher returns, so edits
// made after it returns are observed once Run is called.
//
// Parameters:
//   - l: the loader whose programs are watched and reloaded
//   - options: a variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the file system watcher cannot be created or a directory cannot be watched
func NewWatcher(l Loader, options ...WatcherBuilderOption) (Watcher, error) {
	w := &watcher{
		loader:       l,
		labelsByPath: make(map[string][]string),
	}
	for _, option := range options {
		option(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fs = fsw

	dirs := make(map[string]bool)
	for _, label := range l.Described() {
		for _, path := range l.Paths(label) {
			path = filepath.Clean(path)
			w.labelsByPath[path] = append(w.labelsByPath[path], label)
			dirs[filepath.Dir(path)] = true
		}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}
	return w, nil
}

func (w *watcher) Files() []string {
	return common.SortedKeys(w.labelsByPath)
}

func (w *watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("file watcher event stream closed")
			}
			// editors that save through rename show up as Create on the target path
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(filepath.Clean(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("file watcher error stream closed")
			}
			slog.Error("shader watcher error", "error", err)
		}
	}
}

func (w *watcher) reload(path string) {
	for _, label := range w.labelsByPath[path] {
		desc, ok := w.loader.Description(label)
		if !ok {
			continue
		}

		prog, err := w.loader.Load(desc)
		if err != nil {
			slog.Error("program reload failed", "label", label, "path", path, "error", err)
		} else {
			slog.Info("program reloaded", "label", label, "path", path)
		}
		if w.onReload != nil {
			w.onReload(label, prog, err)
		}
	}
}
