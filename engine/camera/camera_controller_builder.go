package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial top-left world pixel.
//
// Parameters:
//   - position: the starting camera position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position mgl32.Vec2) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = position
	}
}

// WithPanSpeed sets the pan speed in world pixels per second. Negative values are treated as zero.
//
// Parameters:
//   - speed: pixels per second
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = max(speed, 0)
	}
}
