package world

import (
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/chunk"
	"github.com/Carmen-Shannon/oxy-tiles/engine/entity"
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	demoColumns = 5
	demoRows    = 4
)

// Demo builds the built-in test map: a 5x4 grid of chunks forming one walled plank floor with a few rooms,
// a player sprite at the spawn cell and four colored lights.
//
// Returns:
//   - *World: the demo world
func Demo() *World {
	w := New("demo", 0)

	for cy := int32(0); cy < demoRows; cy++ {
		for cx := int32(0); cx < demoColumns; cx++ {
			c := chunk.New(cx, cy, tile.Planks)
			for i := 0; i < chunk.Size; i++ {
				if cx == 0 {
					c.Set(0, i, tile.Wall)
				}
				if cx == demoColumns-1 {
					c.Set(chunk.Size-1, i, tile.Wall)
				}
				if cy == 0 {
					c.Set(i, 0, tile.Wall)
				}
				if cy == demoRows-1 {
					c.Set(i, chunk.Size-1, tile.Wall)
				}
			}
			// interior walls with a doorway split the map into rooms
			if cx%2 == 1 {
				for i := 0; i < chunk.Size; i++ {
					if i < 6 || i > 9 {
						c.Set(chunk.Size/2, i, tile.Wall)
					}
				}
			}
			// the far corner is left open to show the ambient floor
			if cx == demoColumns-1 && cy == demoRows-1 {
				for y := 4; y < 12; y++ {
					for x := 4; x < 12; x++ {
						c.Set(x, y, tile.Void)
					}
				}
			}
			w.Chunks = append(w.Chunks, c)
		}
	}

	w.Chunks[0].Set(4, 4, tile.Player)
	w.Chunks[0].Lights = []light.Light{
		light.NewLight(light.WithPosition(mgl32.Vec2{4.5, 4.5}), light.WithMagnitude(6)),
	}

	w.Entities = []entity.Entity{
		entity.NewEntity(
			entity.WithPosition(mgl32.Vec2{4, 4}),
			entity.WithAtlasPosition(0, 0),
			entity.WithSize(1, 1),
			entity.WithColor(common.ColorWhite),
		),
	}

	w.Lights = []light.Light{
		light.NewLight(light.WithPosition(mgl32.Vec2{16, 16}), light.WithColor(common.ColorRed), light.WithMagnitude(14)),
		light.NewLight(light.WithPosition(mgl32.Vec2{40, 24}), light.WithColor(common.ColorGreen), light.WithMagnitude(14)),
		light.NewLight(light.WithPosition(mgl32.Vec2{56, 44}), light.WithColor(common.ColorBlue), light.WithMagnitude(14)),
		light.NewLight(light.WithPosition(mgl32.Vec2{24, 48}), light.WithColor(common.ColorWhite), light.WithMagnitude(12)),
	}
	return w
}
