package camera

import "github.com/go-gl/mathgl/mgl32"

// KeyInput reports which keys are currently held. The window implements it.
type KeyInput interface {
	// IsKeyDown reports whether the key with the given code is held.
	//
	// Parameters:
	//   - keyCode: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is held
	IsKeyDown(keyCode uint32) bool
}

// CameraController owns the camera position and moves it from keyboard input. Positions are world pixels
// shown at the top-left corner of the viewport, with y growing downward.
type CameraController interface {
	// Position returns the world pixel at the top-left corner of the viewport.
	//
	// Returns:
	//   - mgl32.Vec2: the camera position
	Position() mgl32.Vec2

	// SetPosition moves the camera directly.
	//
	// Parameters:
	//   - position: the new top-left world pixel
	SetPosition(position mgl32.Vec2)

	// PanRight moves the camera along x. Positive delta moves right.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanRight(delta float32)

	// PanDown moves the camera along y. Positive delta moves down.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanDown(delta float32)

	// PanSpeed returns the pan speed in world pixels per second.
	PanSpeed() float32

	// SetPanSpeed sets the pan speed. Negative values are treated as zero.
	SetPanSpeed(speed float32)

	// Update pans the camera from the held WASD or arrow keys. Diagonal movement is normalized and shift
	// doubles the speed.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	//   - input: the current key state
	//
	// Returns:
	//   - bool: true if the camera moved
	Update(deltaTime float32, input KeyInput) bool
}
