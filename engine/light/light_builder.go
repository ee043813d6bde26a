package light

import (
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light during construction.
type LightBuilderOption func(*Light)

// WithPosition is an option builder that sets the position of the light in tiles.
//
// Parameters:
//   - position: the light center
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a Light
func WithPosition(position mgl32.Vec2) LightBuilderOption {
	return func(l *Light) {
		l.Position = position
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - color: the light color; alpha is ignored
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a Light
func WithColor(color common.Color) LightBuilderOption {
	return func(l *Light) {
		l.Color = color
	}
}

// WithMagnitude is an option builder that sets the falloff radius in tiles. Negative values are clamped to zero.
//
// Parameters:
//   - magnitude: the radius in tiles
//
// Returns:
//   - LightBuilderOption: a function that applies the magnitude option to a Light
func WithMagnitude(magnitude float32) LightBuilderOption {
	return func(l *Light) {
		l.Magnitude = max(magnitude, 0)
	}
}
