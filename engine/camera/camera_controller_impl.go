package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPanSpeed is the pan speed in world pixels per second when none is configured.
const DefaultPanSpeed = 256

// boostFactor multiplies the pan speed while shift is held.
const boostFactor = 2

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec2
	panSpeed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller at the world origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		panSpeed: DefaultPanSpeed,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec2 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(position mgl32.Vec2) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position[0] += delta * cc.panSpeed
}

func (cc *cameraControllerImpl) PanDown(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position[1] += delta * cc.panSpeed
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) SetPanSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.panSpeed = max(speed, 0)
}

func (cc *cameraControllerImpl) Update(deltaTime float32, input KeyInput) bool {
	if input == nil || deltaTime <= 0 {
		return false
	}

	var dir mgl32.Vec2
	if input.IsKeyDown(common.KeyA) || input.IsKeyDown(common.KeyLeft) {
		dir[0]--
	}
	if input.IsKeyDown(common.KeyD) || input.IsKeyDown(common.KeyRight) {
		dir[0]++
	}
	if input.IsKeyDown(common.KeyW) || input.IsKeyDown(common.KeyUp) {
		dir[1]--
	}
	if input.IsKeyDown(common.KeyS) || input.IsKeyDown(common.KeyDown) {
		dir[1]++
	}
	if dir.Len() == 0 {
		return false
	}
	dir = dir.Normalize()

	step := deltaTime
	if input.IsKeyDown(common.KeyLeftShift) || input.IsKeyDown(common.KeyRightShift) {
		step *= boostFactor
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.panSpeed == 0 {
		return false
	}
	cc.position = cc.position.Add(dir.Mul(step * cc.panSpeed))
	return true
}
