package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial framebuffer size. It is clamped to the size limits once all options are applied.
//
// Parameters:
//   - width: initial width in pixels, 0 keeps the default
//   - height: initial height in pixels, 0 keeps the default
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
//
// Parameters:
//   - width: minimum width in pixels, 0 keeps the default
//   - height: minimum height in pixels, 0 keeps the default
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.minWidth = width
		}
		if height > 0 {
			w.minHeight = height
		}
	}
}

// WithMaxSize sets the largest size the user can resize the window to.
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.maxWidth = width
		}
		if height > 0 {
			w.maxHeight = height
		}
	}
}
