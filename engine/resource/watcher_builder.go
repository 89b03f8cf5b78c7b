package resource

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*watcher)

// WithOnReload sets the callback invoked after each reload attempt.
//
// Parameters:
//   - fn: the reload callback
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithOnReload(fn ReloadFunc) WatcherBuilderOption {
	return func(w *watcher) {
		w.onReload = fn
	}
}
