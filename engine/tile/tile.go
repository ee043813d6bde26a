// Package tile defines the terrain identifiers stored in chunk layouts and the static catalog that resolves them
// to render attributes.
package tile

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// Tile is a single grid cell's terrain identifier. It is stored as one byte per cell in chunk layouts and
// indexes the catalog directly on the GPU.
type Tile uint8

const (
	// Void is an empty, fully transparent cell.
	Void Tile = 0
	// Wall is a solid brick cell.
	Wall Tile = 1
	// Planks is a wooden floor cell.
	Planks Tile = 2
	// Player marks the cell a player starts on in hand-authored maps. It renders as Void.
	Player Tile = 255
)

// Size is the edge length of a single tile in pixels, both on screen and in the atlas.
const Size = 16

// Attributes are the render attributes of a tile: where its texture lives in the atlas and how it is tinted.
type Attributes struct {
	// AtlasPosition is the tile's cell in the tile atlas, in units of Size pixels.
	AtlasPosition [2]int32
	// Primary tints the bright texels of the atlas cell.
	Primary common.Color
	// Secondary tints the dark texels of the atlas cell. A zero value defaults to Primary.
	Secondary common.Color
}

// Attributes returns the render attributes of the tile. Unknown identifiers resolve to the Void attributes.
//
// Returns:
//   - Attributes: the tile's render attributes
func (t Tile) Attributes() Attributes {
	switch t {
	case Wall:
		return Attributes{
			AtlasPosition: [2]int32{0, 1},
			Primary:       common.ColorWhite,
			Secondary:     common.Color{R: 0, G: 0, B: 255, A: 255},
		}
	case Planks:
		return Attributes{
			AtlasPosition: [2]int32{2, 1},
			Primary:       common.ColorWhite,
			Secondary:     common.Color{R: 220, G: 220, B: 220, A: 255},
		}
	default:
		return Attributes{}
	}
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	switch t {
	case Void:
		return "void"
	case Wall:
		return "wall"
	case Planks:
		return "planks"
	case Player:
		return "player"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}
