package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ErrResourceNotFound is returned when a resource path does not resolve to a file in any search directory.
var ErrResourceNotFound = errors.New("resource not found")

// Finder resolves relative resource paths against an ordered list of search directories.
type Finder interface {
	// Find returns the absolute path of the first regular file matching rel.
	// Absolute paths are checked as-is.
	//
	// Parameters:
	//   - rel: the resource path, usually relative
	//
	// Returns:
	//   - string: the absolute path of the file
	//   - error: wraps ErrResourceNotFound if no directory holds the file
	Find(rel string) (string, error)

	// Dirs returns the search directories in lookup order.
	//
	// Returns:
	//   - []string: the search directories
	Dirs() []string
}

type finder struct {
	dirs []string
}

var _ Finder = &finder{}

// NewFinder creates a Finder searching dirs in order. With no directories, paths resolve
// against the working directory.
//
// Parameters:
//   - dirs: the search directories
//
// Returns:
//   - Finder: the finder
func NewFinder(dirs ...string) Finder {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return &finder{dirs: slices.Clone(dirs)}
}

func (f *finder) Find(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path: %w", ErrResourceNotFound)
	}

	if filepath.IsAbs(rel) {
		if isFile(rel) {
			return filepath.Clean(rel), nil
		}
		return "", fmt.Errorf("%q: %w", rel, ErrResourceNotFound)
	}

	for _, dir := range f.dirs {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if !isFile(candidate) {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	return "", fmt.Errorf("%q in %v: %w", rel, f.dirs, ErrResourceNotFound)
}

func (f *finder) Dirs() []string {
	return slices.Clone(f.dirs)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
