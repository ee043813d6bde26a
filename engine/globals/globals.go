// Package globals tracks the viewport resolution and camera that every pipeline reads from bind group 0.
package globals

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type manager struct {
	width, height int
	camera        mgl32.Vec2
	mu            sync.RWMutex
}

// Manager tracks the state behind the Globals uniform. Size-dependent GPU resources are rebuilt by the
// compositor only when Resize reports a real change.
type Manager interface {
	// Resize records a new viewport size. A zero width or height (a minimized window) and a size equal to
	// the current one are both ignored.
	//
	// Parameters:
	//   - width: the new viewport width in pixels
	//   - height: the new viewport height in pixels
	//
	// Returns:
	//   - bool: true if the stored resolution changed and size-dependent resources must be rebuilt
	Resize(width, height int) bool

	// Resolution returns the current viewport size in pixels.
	Resolution() (int, int)

	// SetCamera stores the world pixel shown at the top-left corner of the viewport.
	SetCamera(position mgl32.Vec2)

	// Camera returns the stored camera position.
	Camera() mgl32.Vec2

	// Globals builds the GPU record from the current state.
	Globals() GPUGlobals
}

var _ Manager = &manager{}

// NewManager creates a Manager for an initial viewport size.
//
// Parameters:
//   - width: the initial viewport width in pixels
//   - height: the initial viewport height in pixels
//
// Returns:
//   - Manager: the globals manager
func NewManager(width, height int) Manager {
	return &manager{width: max(width, 0), height: max(height, 0)}
}

func (m *manager) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if width == m.width && height == m.height {
		return false
	}
	m.width, m.height = width, height
	return true
}

func (m *manager) Resolution() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width, m.height
}

func (m *manager) SetCamera(position mgl32.Vec2) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camera = position
}

func (m *manager) Camera() mgl32.Vec2 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

func (m *manager) Globals() GPUGlobals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return GPUGlobals{
		Resolution: [2]uint32{uint32(m.width), uint32(m.height)},
		Camera:     [2]float32{m.camera.X(), m.camera.Y()},
	}
}
