package entity

import (
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityBuilderOption is a function that configures an Entity during construction.
type EntityBuilderOption func(*Entity)

// WithPosition sets the sprite's top-left corner in world tiles.
func WithPosition(position mgl32.Vec2) EntityBuilderOption {
	return func(e *Entity) {
		e.Position = position
	}
}

// WithAtlasPosition sets the sprite's top-left cell in the entity atlas.
func WithAtlasPosition(x, y uint32) EntityBuilderOption {
	return func(e *Entity) {
		e.AtlasPosition = [2]uint32{x, y}
	}
}

// WithSize sets the sprite footprint in cells. Zero components are raised to one.
func WithSize(w, h uint32) EntityBuilderOption {
	return func(e *Entity) {
		e.Size = [2]uint32{max(w, 1), max(h, 1)}
	}
}

// WithColor sets the primary tint.
func WithColor(color common.Color) EntityBuilderOption {
	return func(e *Entity) {
		e.Color = color
	}
}

// WithDetail sets the secondary tint.
func WithDetail(detail common.Color) EntityBuilderOption {
	return func(e *Entity) {
		e.Detail = detail
	}
}
