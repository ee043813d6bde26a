package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithController attaches a controller to the camera.
//
// Parameters:
//   - controller: the controller that owns the camera position
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithController(controller CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = controller
	}
}

// WithViewport sets the initial viewport size. Zero sizes are ignored.
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}
