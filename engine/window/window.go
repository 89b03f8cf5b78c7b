package window

import (
	"fmt"
	"log/slog"
)

// Window provides an OpenGL context backed by a platform window. The window is hidden by
// default so programs can be compiled and linked without presenting anything.
type Window interface {
	// GLVersion returns the version string reported by the driver.
	//
	// Returns:
	//   - string: the GL_VERSION string
	GLVersion() string

	// ProcessMessages polls pending window events without blocking. Hidden windows still
	// receive events such as close requests and must be pumped while the context is alive.
	//
	// Returns:
	//   - bool: true if the window is still running
	ProcessMessages() bool

	// Close destroys the window and its context and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was not initialized
	Close() error
}

// engineWindow is the implementation of the Window interface.
// Platform specific state lives in internalWindow.
type engineWindow struct {
	title          string
	width, height  int
	visible        bool
	glMajor        int
	glMinor        int
	internalWindow any
}

var _ Window = &engineWindow{}

// NewWindow creates a window with a current OpenGL core profile context and loads the GL
// function pointers. The calling goroutine is locked to its OS thread; all GL calls must be
// made from that goroutine.
//
// Parameters:
//   - options: variadic WindowBuilderOption functions
//
// Returns:
//   - Window: the created window
//   - error: error if GLFW, the window or the GL bindings fail to initialize
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:   "demosys",
		width:   640,
		height:  360,
		visible: false,
		glMajor: 4,
		glMinor: 1,
	}
	for _, option := range options {
		option(w)
	}

	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	slog.Info("gl context created", "version", w.GLVersion(), "requested", fmt.Sprintf("%d.%d", w.glMajor, w.glMinor), "visible", w.visible)
	return w, nil
}

func (w *engineWindow) GLVersion() string {
	return platformGLVersion(w)
}

func (w *engineWindow) ProcessMessages() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) Close() error {
	err := platformCloseWindow(w)
	w.internalWindow = nil
	return err
}
