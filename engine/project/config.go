package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/demosys-go/common"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/buffer_format"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid project config")
)

// ProgramConfig is the project file entry for one shader program.
type ProgramConfig struct {
	Label          string `toml:"label"`
	Path           string `toml:"path"`
	VertexShader   string `toml:"vertex_shader"`
	GeometryShader string `toml:"geometry_shader"`
	FragmentShader string `toml:"fragment_shader"`
}

// Config is a demo project: the effects to run, where their resources live and the
// programs and buffer layouts they need.
type Config struct {
	Name          string            `toml:"name"`
	ResourceDirs  []string          `toml:"resource_dirs"`
	Effects       []string          `toml:"effects"`
	Programs      []ProgramConfig   `toml:"programs"`
	BufferLayouts map[string]string `toml:"buffer_layouts"`
}

// Load reads, decodes and validates the project file at path. Relative resource
// directories are resolved against the directory holding the file, and the directory
// itself is used when none are listed.
//
// Parameters:
//   - path: the project TOML file
//
// Returns:
//   - *Config: the validated project configuration
//   - error: error if the file cannot be read, decoded or fails validation
func Load(path string) (*Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	cfg, err := Read(bufio.NewReader(fp))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if len(cfg.ResourceDirs) == 0 {
		cfg.ResourceDirs = []string{base}
	}
	for i, dir := range cfg.ResourceDirs {
		if !filepath.IsAbs(dir) {
			cfg.ResourceDirs[i] = filepath.Join(base, dir)
		}
	}
	return cfg, nil
}

// Read decodes and validates a project from r. Unknown fields are rejected.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - *Config: the validated project configuration, resource directories unresolved
//   - error: error if decoding or validation fails
func Read(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			keys := make([]string, 0, len(sme.Errors))
			for _, de := range sme.Errors {
				keys = append(keys, strings.Join(de.Key(), "."))
			}
			return nil, fmt.Errorf("%w: unknown fields %s", ErrInvalidConfig, strings.Join(keys, ", "))
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the program entries and buffer layouts.
//
// Returns:
//   - error: the joined validation errors, each wrapping ErrInvalidConfig
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Programs))
	for i, p := range c.Programs {
		switch {
		case p.Label == "":
			errs = append(errs, fmt.Errorf("%w: program %d has no label", ErrInvalidConfig, i))
		case hasKey(seen, p.Label):
			errs = append(errs, fmt.Errorf("%w: duplicate program label %q", ErrInvalidConfig, p.Label))
		}
		seen[p.Label] = struct{}{}

		if p.Path != "" && (p.VertexShader != "" || p.GeometryShader != "" || p.FragmentShader != "") {
			errs = append(errs, fmt.Errorf("%w: program %q sets both path and stage files", ErrInvalidConfig, p.Label))
		}
		if p.Path == "" && p.VertexShader == "" {
			errs = append(errs, fmt.Errorf("%w: program %q needs path or vertex_shader", ErrInvalidConfig, p.Label))
		}
	}

	for _, name := range common.SortedKeys(c.BufferLayouts) {
		if _, err := buffer_format.ParseLayout(c.BufferLayouts[name]); err != nil {
			errs = append(errs, fmt.Errorf("%w: buffer layout %q: %w", ErrInvalidConfig, name, err))
		}
	}
	return errors.Join(errs...)
}

// ProgramDescriptions converts the program entries to descriptions for the resource loader.
func (c *Config) ProgramDescriptions() []shader.ProgramDescription {
	descs := make([]shader.ProgramDescription, 0, len(c.Programs))
	for _, p := range c.Programs {
		descs = append(descs, shader.ProgramDescription{
			Label:          p.Label,
			Path:           p.Path,
			VertexShader:   p.VertexShader,
			GeometryShader: p.GeometryShader,
			FragmentShader: p.FragmentShader,
		})
	}
	return descs
}

// Layout parses the named buffer layout.
//
// Parameters:
//   - name: the key under buffer_layouts
//
// Returns:
//   - buffer_format.Layout: the parsed layout
//   - bool: false if no layout is configured under name
func (c *Config) Layout(name string) (buffer_format.Layout, bool) {
	spec, ok := c.BufferLayouts[name]
	if !ok {
		return nil, false
	}
	layout, err := buffer_format.ParseLayout(spec)
	if err != nil {
		return nil, false
	}
	return layout, true
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
