// Package window wraps a GLFW window. It provides the WebGPU surface and the held-key state, and reports
// resize events in framebuffer pixels.
package window

import (
	"errors"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrWindowCreate is returned when the platform window cannot be created.
var ErrWindowCreate = errors.New("window: create failed")

// ErrNotInitialized is returned when closing a window whose platform window was never created.
var ErrNotInitialized = errors.New("window: not initialized")

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized. A minimized window
	// reports a zero size.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// IsKeyDown reports whether a key is currently held.
	//
	// Parameters:
	//   - keyCode: a common.Key* code
	//
	// Returns:
	//   - bool: true between the key's press and release
	IsKeyDown(keyCode uint32) bool

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration. The window stays valid until
	// Close.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window size during resize.
	maxWidth, maxHeight int

	// minWidth and minHeight bound the window size during resize.
	minWidth, minHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	// internalWindow holds the platform window (*glfw.Window), nil until created and after Close.
	internalWindow any

	keysMu sync.Mutex
	keys   map[uint32]bool

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window. Must be called from the main goroutine; the calling thread is
// locked to the OS thread for the lifetime of the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: ErrWindowCreate wrapping the platform error
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// newEngineWindow applies defaults and options without touching the platform.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-tiles",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
		keys:      make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = min(max(w.width, w.minWidth), w.maxWidth)
	w.height = min(max(w.height, w.minHeight), w.maxHeight)
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) IsKeyDown(keyCode uint32) bool {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()
	return w.keys[keyCode]
}

// handleKeyEvent routes a platform key event. Every key, Escape included, reaches the registered callbacks;
// quitting is left to the application.
func (w *engineWindow) handleKeyEvent(keyCode uint32, down bool) {
	if down {
		w.handleKeyDown(keyCode)
		return
	}
	w.handleKeyUp(keyCode)
}

// handleKeyDown records a press or repeat and forwards it.
func (w *engineWindow) handleKeyDown(keyCode uint32) {
	w.keysMu.Lock()
	w.keys[keyCode] = true
	w.keysMu.Unlock()
	if w.onKeyDown != nil {
		w.onKeyDown(keyCode)
	}
}

// handleKeyUp records a release and forwards it.
func (w *engineWindow) handleKeyUp(keyCode uint32) {
	w.keysMu.Lock()
	delete(w.keys, keyCode)
	w.keysMu.Unlock()
	if w.onKeyUp != nil {
		w.onKeyUp(keyCode)
	}
}

// handleResize stores the framebuffer size and forwards it, including zero sizes.
func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// releaseKeys drops every held key, used when the window loses focus so keys do not stick.
func (w *engineWindow) releaseKeys() {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()
	clear(w.keys)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
