// Package world holds the aggregate root of a loaded map: its persisted identity and the chunks, entities
// and lights the renderer uploads.
package world

import (
	"github.com/Carmen-Shannon/oxy-tiles/engine/chunk"
	"github.com/Carmen-Shannon/oxy-tiles/engine/entity"
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/go-gl/mathgl/mgl32"
)

// World is a loaded map. Only Name and Seed persist; the runtime arrays are replaced wholesale by game logic
// and are never read from or written to a map file.
type World struct {
	Name string `json:"name"`
	Seed uint32 `json:"seed"`

	Chunks   []chunk.Chunk   `json:"-"`
	Entities []entity.Entity `json:"-"`
	// Lights are positioned in world tiles. Chunk-local lights live on their chunk.
	Lights []light.Light `json:"-"`
}

// New creates an empty world.
//
// Parameters:
//   - name: the map name
//   - seed: the map seed
//
// Returns:
//   - *World: the world with no chunks, entities or lights
func New(name string, seed uint32) *World {
	return &World{Name: name, Seed: seed}
}

// AllLights returns the world lights followed by every chunk's lights translated to world tiles.
//
// Returns:
//   - []light.Light: a new slice in world tile coordinates
func (w *World) AllLights() []light.Light {
	out := make([]light.Light, 0, len(w.Lights))
	out = append(out, w.Lights...)
	for i := range w.Chunks {
		out = append(out, w.Chunks[i].WorldLights()...)
	}
	return out
}

// ChunkWindow assembles the chunks resident in win in row-major slot order. Slots without a chunk in the
// world are filled with all-Void chunks at the slot's coordinate. When two chunks share a position the later
// one wins.
//
// Parameters:
//   - win: the resident chunk window
//
// Returns:
//   - []chunk.Chunk: exactly win.Capacity() chunks
func (w *World) ChunkWindow(win chunk.Window) []chunk.Chunk {
	out := make([]chunk.Chunk, win.Capacity())
	for i := range out {
		out[i].Position = [2]int32{
			win.Origin[0] + int32(i%win.Columns),
			win.Origin[1] + int32(i/win.Columns),
		}
	}
	for i := range w.Chunks {
		if slot, ok := win.Slot(w.Chunks[i].Position); ok {
			out[slot] = w.Chunks[i]
		}
	}
	return out
}

// Spawn returns the world tile of the first Player cell, scanning chunks in order.
//
// Returns:
//   - mgl32.Vec2: the spawn cell's top-left corner in world tiles
//   - bool: false if no chunk marks a spawn
func (w *World) Spawn() (mgl32.Vec2, bool) {
	for i := range w.Chunks {
		c := &w.Chunks[i]
		for y := range chunk.Size {
			for x := range chunk.Size {
				if c.At(x, y) == tile.Player {
					return mgl32.Vec2{
						float32(c.Position[0]*chunk.Size) + float32(x),
						float32(c.Position[1]*chunk.Size) + float32(y),
					}, true
				}
			}
		}
	}
	return mgl32.Vec2{}, false
}
