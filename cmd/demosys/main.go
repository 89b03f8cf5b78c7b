// Command demosys loads a demo project and assembles its shader programs.
//
// Usage:
//
//	demosys [options]
//
// Examples:
//
//	demosys -project demo.toml              # Assemble every program
//	demosys -project demo.toml -link        # Also link them in a hidden GL context
//	demosys -project demo.toml -watch       # Reassemble programs when sources change
//	demosys -project demo.toml -link -watch -show  # Relink on change until the window closes
//	demosys -layout "3f 3f 2f"              # Describe a vertex buffer layout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/demosys-go/engine/effect"
	"github.com/Carmen-Shannon/demosys-go/engine/project"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/buffer_format"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/linker"
	"github.com/Carmen-Shannon/demosys-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/demosys-go/engine/resource"
	"github.com/Carmen-Shannon/demosys-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	projectPath = flag.String("project", "", "project TOML file")
	link        = flag.Bool("link", false, "link every program in a hidden OpenGL context")
	watch       = flag.Bool("watch", false, "reassemble programs when their sources change")
	layout      = flag.String("layout", "", "describe a buffer layout such as \"3f 2f\" and exit")
	workers     = flag.Int("workers", 0, "program loading workers (default: CPUs - 1)")
	glVersion   = flag.String("gl", "4.1", "OpenGL core profile version requested with -link")
	show        = flag.Bool("show", false, "show the GL window with -link, closing it ends -watch")
	verbose     = flag.Bool("v", false, "debug logging")
)

func init() {
	// GLFW and every GL call must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *layout != "" {
		if err := describeLayout(os.Stdout, *layout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *projectPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no project file specified")
		usage()
		os.Exit(1)
	}

	if err := run(*projectPath); err != nil {
		slog.Error("demosys failed", "error", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := project.Load(path)
	if err != nil {
		return err
	}
	slog.Info("project loaded", "name", cfg.Name, "resource_dirs", cfg.ResourceDirs, "effects", cfg.Effects)

	descs := cfg.ProgramDescriptions()
	var effects []effect.Effect
	if len(cfg.Effects) > 0 {
		effects, err = effect.Default.Populate(cfg.Effects)
		if err != nil {
			slog.Warn("effects not available in this build", "error", err)
		} else {
			descs = append(descs, effect.Default.Programs(effects)...)
		}
	}

	var opts []resource.LoaderBuilderOption
	if *workers > 0 {
		opts = append(opts, resource.WithWorkers(*workers))
	}
	loader := resource.NewLoader(resource.NewFinder(cfg.ResourceDirs...), opts...)

	programs, loadErr := loader.LoadAll(descs)
	for _, label := range loader.Labels() {
		logProgram(programs[label])
	}
	if err := effect.Default.PostLoad(effects); err != nil {
		loadErr = errors.Join(loadErr, err)
	}

	var (
		lk  linker.Linker
		win window.Window
	)
	if *link {
		major, minor, err := parseGLVersion(*glVersion)
		if err != nil {
			return err
		}
		win, err = window.NewWindow(
			window.WithTitle("demosys "+cfg.Name),
			window.WithGLVersion(major, minor),
			window.WithVisible(*show),
		)
		if err != nil {
			return err
		}
		defer win.Close()

		lk = linker.NewGLLinker()
		for _, label := range loader.Labels() {
			if err := linkProgram(lk, programs[label]); err != nil {
				loadErr = errors.Join(loadErr, err)
			}
		}
	}

	if !*watch {
		return loadErr
	}
	if loadErr != nil {
		slog.Warn("some programs failed, watching anyway", "error", loadErr)
	}
	return watchPrograms(loader, lk, win)
}

// watchPrograms blocks until interrupted, relinking reloaded programs on the calling thread
// when a linker is given. The GL window, if any, is polled so a close request ends the watch.
func watchPrograms(loader resource.Loader, lk linker.Linker, win window.Window) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	type reloaded struct {
		label   string
		program shader.AssembledProgram
	}
	reloads := make(chan reloaded, 16)

	w, err := resource.NewWatcher(loader, resource.WithOnReload(func(label string, p shader.AssembledProgram, err error) {
		if err != nil {
			slog.Error("reload failed", "label", label, "error", err)
			return
		}
		select {
		case reloads <- reloaded{label: label, program: p}:
		case <-ctx.Done():
		}
	}))
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	slog.Info("watching for changes", "files", len(w.Files()))

	// GLFW events are only delivered on the main thread
	var poll <-chan time.Time
	if win != nil {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		select {
		case <-poll:
			if !win.ProcessMessages() {
				slog.Info("window closed, stopping watch")
				stop()
				if err := <-done; !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}
		case r := <-reloads:
			logProgram(r.program)
			if lk != nil {
				if err := linkProgram(lk, r.program); err != nil {
					slog.Error("relink failed", "label", r.label, "error", err)
				}
			}
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func linkProgram(lk linker.Linker, p shader.AssembledProgram) error {
	linked, err := lk.Link(p)
	if err != nil {
		return err
	}
	linked.Delete()
	return nil
}

func logProgram(p shader.AssembledProgram) {
	stages := make([]string, 0, 3)
	for _, st := range p.Stages() {
		stages = append(stages, st.String())
	}
	slog.Info("program assembled",
		"label", p.Label,
		"stages", stages,
		"transform_feedback", p.IsTransformFeedback(),
		"varyings", p.Varyings,
	)
}

// parseGLVersion parses a "major.minor" version such as "4.1".
func parseGLVersion(v string) (int, int, error) {
	var major, minor int
	if _, err := fmt.Sscanf(v, "%d.%d", &major, &minor); err != nil || major < 1 {
		return 0, 0, fmt.Errorf("invalid GL version %q, want major.minor", v)
	}
	return major, minor, nil
}

func describeLayout(w io.Writer, spec string) error {
	l, err := buffer_format.ParseLayout(spec)
	if err != nil {
		return err
	}
	vbl, err := l.VertexBufferLayout(0, wgpu.VertexStepModeVertex)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "layout %s stride %d\n", l, l.Stride())
	for i, attr := range vbl.Attributes {
		fmt.Fprintf(w, "  %d: %-4s location=%d offset=%d size=%d format=%v\n",
			i, l[i].FormatToken(), attr.ShaderLocation, attr.Offset, l[i].Size(), attr.Format)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: demosys [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  demosys -project demo.toml          Assemble every program\n")
	fmt.Fprintf(os.Stderr, "  demosys -project demo.toml -link    Link in a hidden GL context\n")
	fmt.Fprintf(os.Stderr, "  demosys -project demo.toml -watch   Reassemble on change\n")
	fmt.Fprintf(os.Stderr, "  demosys -layout \"3f 3f 2f\"          Describe a buffer layout\n")
}
