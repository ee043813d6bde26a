package compositor

import "github.com/cogentcore/webgpu/wgpu"

// CompositorBuilderOption is a functional option for configuring a Compositor.
type CompositorBuilderOption func(*compositor)

// WithMaxInstances bounds how far the entity and light buffers may grow. Values below MinInstanceCapacity are
// raised to it.
//
// Parameters:
//   - limit: the maximum number of entities and of lights per frame
//
// Returns:
//   - CompositorBuilderOption: a function that applies the limit
func WithMaxInstances(limit int) CompositorBuilderOption {
	return func(c *compositor) {
		c.maxInstances = max(limit, MinInstanceCapacity)
	}
}

// WithAmbient overrides the color the unlit target is cleared to.
func WithAmbient(color wgpu.Color) CompositorBuilderOption {
	return func(c *compositor) {
		c.ambient = color
	}
}
