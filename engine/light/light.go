// Package light defines point lights and their GPU instance records. Lights are accumulated additively by
// the lighting pass, one draw call per light.
package light

import (
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMagnitude is the radius in tiles of a light created without WithMagnitude.
const DefaultMagnitude = 8

// Light is a point light. Lights inside a chunk are positioned relative to the chunk; world lights are in
// world tile coordinates.
type Light struct {
	// Position is the light's center in tiles.
	Position mgl32.Vec2 `json:"position"`
	// Color is the light's RGB color. Alpha is ignored.
	Color common.Color `json:"color"`
	// Magnitude is the radius in tiles over which the light falls off to nothing.
	Magnitude float32 `json:"magnitude"`
}

// NewLight creates a white light at the origin with DefaultMagnitude and applies opts in order.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(opts ...LightBuilderOption) Light {
	l := Light{
		Color:     common.ColorWhite,
		Magnitude: DefaultMagnitude,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// GPU converts the light to its shader record.
func (l Light) GPU() GPULight {
	c := l.Color
	c.A = 255
	return GPULight{
		Position:  [2]float32{l.Position.X(), l.Position.Y()},
		Color:     c.Pack(),
		Magnitude: l.Magnitude,
	}
}
