// Package entity defines sprite entities drawn over the tile map in the unlit pass, one draw call each.
package entity

import (
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Entity is a sprite placed in the world.
type Entity struct {
	// Position is the top-left corner of the sprite in world tiles.
	Position mgl32.Vec2 `json:"position"`
	// AtlasPosition is the sprite's top-left cell in the entity atlas.
	AtlasPosition [2]uint32 `json:"atlas_position"`
	// Size is the sprite footprint in cells.
	Size [2]uint32 `json:"size"`
	// Color tints the bright texels of the sprite.
	Color common.Color `json:"color"`
	// Detail tints the dark texels of the sprite. A zero value defaults to Color.
	Detail common.Color `json:"detail"`
}

// NewEntity creates a white 1x1 entity at the origin and applies opts in order.
//
// Parameters:
//   - opts: variadic list of EntityBuilderOption functions to configure the entity
//
// Returns:
//   - Entity: the configured entity
func NewEntity(opts ...EntityBuilderOption) Entity {
	e := Entity{
		Size:  [2]uint32{1, 1},
		Color: common.ColorWhite,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// GPU converts the entity to its shader record.
func (e Entity) GPU() GPUEntity {
	return GPUEntity{
		Position:      [2]float32{e.Position.X(), e.Position.Y()},
		AtlasPosition: e.AtlasPosition,
		Size:          e.Size,
		Color:         e.Color.Pack(),
		Detail:        common.Coalesce(e.Detail, e.Color).Pack(),
	}
}
