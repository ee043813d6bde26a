// Package camera provides the 2D camera. The camera is a top-left world pixel. Its controller owns that
// position and pans it from keyboard input, while the camera adds the viewport size so it can center on a
// point.
package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	width, height int

	controller CameraController
}

// Camera defines the interface for the camera system.
type Camera interface {
	// Position returns the world pixel at the top-left corner of the viewport.
	//
	// Returns:
	//   - mgl32.Vec2: the controller's position
	Position() mgl32.Vec2

	// Center returns the world pixel at the middle of the viewport.
	//
	// Returns:
	//   - mgl32.Vec2: the viewport center in world pixels
	Center() mgl32.Vec2

	// CenterOn moves the camera so that point sits in the middle of the viewport.
	//
	// Parameters:
	//   - point: a world pixel
	CenterOn(point mgl32.Vec2)

	// SetViewport records the viewport size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	SetViewport(width, height int)

	// Viewport returns the viewport size in pixels.
	Viewport() (int, int)

	// Controller returns the attached controller.
	Controller() CameraController

	// SetController replaces the attached controller.
	SetController(controller CameraController)

	// Update forwards input to the controller.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	//   - input: the current key state
	//
	// Returns:
	//   - bool: true if the camera moved
	Update(deltaTime float32, input KeyInput) bool
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a default controller and a 1280x720 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec2 {
	return c.Controller().Position()
}

func (c *cameraImpl) Center() mgl32.Vec2 {
	w, h := c.Viewport()
	return c.Position().Add(mgl32.Vec2{float32(w) / 2, float32(h) / 2})
}

func (c *cameraImpl) CenterOn(point mgl32.Vec2) {
	w, h := c.Viewport()
	c.Controller().SetPosition(point.Sub(mgl32.Vec2{float32(w) / 2, float32(h) / 2}))
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

func (c *cameraImpl) Viewport() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(controller CameraController) {
	if controller == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = controller
}

func (c *cameraImpl) Update(deltaTime float32, input KeyInput) bool {
	return c.Controller().Update(deltaTime, input)
}
