// Package chunk holds the map's unit of storage and upload: a 16x16 block of tiles plus the lights that
// belong to it, and the math that sizes the resident chunk window to the viewport.
package chunk

import (
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/go-gl/mathgl/mgl32"
)

// Size is the edge length of a chunk in tiles.
const Size = 16

// PixelSize is the edge length of a chunk in pixels.
const PixelSize = Size * tile.Size

// Chunk is a fixed Size x Size grid of tiles and the lights placed inside it. Light positions are
// chunk-local and measured in tiles.
type Chunk struct {
	// Position is the chunk coordinate; the chunk covers tiles [Position*Size, Position*Size+Size).
	Position [2]int32 `json:"position"`
	// Layout is indexed [y][x].
	Layout [Size][Size]tile.Tile `json:"layout"`
	// Lights are positioned relative to the chunk's top-left tile.
	Lights []light.Light `json:"lights,omitempty"`
}

// New creates a chunk at the given chunk coordinate with every cell set to fill.
//
// Parameters:
//   - x: the chunk column
//   - y: the chunk row
//   - fill: the tile every cell starts as
//
// Returns:
//   - Chunk: the new chunk
func New(x, y int32, fill tile.Tile) Chunk {
	c := Chunk{Position: [2]int32{x, y}}
	c.Fill(fill)
	return c
}

// Fill sets every cell of the layout to t.
func (c *Chunk) Fill(t tile.Tile) {
	for y := range c.Layout {
		for x := range c.Layout[y] {
			c.Layout[y][x] = t
		}
	}
}

// Set writes a tile at a chunk-local cell. Coordinates outside the chunk are ignored.
func (c *Chunk) Set(x, y int, t tile.Tile) {
	if x < 0 || y < 0 || x >= Size || y >= Size {
		return
	}
	c.Layout[y][x] = t
}

// At returns the tile at a chunk-local cell, or Void outside the chunk.
func (c *Chunk) At(x, y int) tile.Tile {
	if x < 0 || y < 0 || x >= Size || y >= Size {
		return tile.Void
	}
	return c.Layout[y][x]
}

// Origin returns the world position of the chunk's top-left tile, in tiles.
func (c *Chunk) Origin() mgl32.Vec2 {
	return mgl32.Vec2{float32(c.Position[0] * Size), float32(c.Position[1] * Size)}
}

// WorldLights returns the chunk's lights translated from chunk-local to world tile coordinates.
//
// Returns:
//   - []light.Light: a new slice; the chunk's own lights are not modified
func (c *Chunk) WorldLights() []light.Light {
	if len(c.Lights) == 0 {
		return nil
	}
	origin := c.Origin()
	out := make([]light.Light, len(c.Lights))
	for i, l := range c.Lights {
		l.Position = l.Position.Add(origin)
		out[i] = l
	}
	return out
}
