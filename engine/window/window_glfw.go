package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// newPlatformWindow locks the calling goroutine to its OS thread, creates a GLFW window without a client API
// and routes its key, focus and framebuffer events into w. The stored size becomes the framebuffer size,
// which differs from the requested size on high-DPI displays.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: initialize GLFW: %v", ErrWindowCreate, err)
	}

	// the surface comes from WebGPU, not an OpenGL context
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("%w: create GLFW window: %v", ErrWindowCreate, err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.handleKeyEvent(uint32(key), action != glfw.Release)
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if !focused {
			w.releaseKeys()
		}
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.handleResize(width, height)
	})

	w.internalWindow = win
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// glfwHandle returns the GLFW window behind w, or nil before newPlatformWindow has run.
func glfwHandle(w *engineWindow) *glfw.Window {
	win, _ := w.internalWindow.(*glfw.Window)
	return win
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	win := glfwHandle(w)
	if win == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(win)
}

// platformIsRunningCheck is false once a close was requested, by the user or by RequestClose.
func platformIsRunningCheck(w *engineWindow) bool {
	win := glfwHandle(w)
	return win != nil && !win.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	if win := glfwHandle(w); win != nil {
		win.SetShouldClose(true)
	}
}

// platformCloseWindow destroys the window and terminates GLFW. The window cannot be reopened.
func platformCloseWindow(w *engineWindow) error {
	win := glfwHandle(w)
	if win == nil {
		return ErrNotInitialized
	}
	win.SetShouldClose(true)
	win.Destroy()
	w.internalWindow = nil
	glfw.Terminate()
	return nil
}

// platformProcessMessages polls pending events without blocking and reports whether the window is still open.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
