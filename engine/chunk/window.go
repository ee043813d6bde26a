package chunk

import (
	"math"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

// border is the number of extra chunks kept resident on each side of the visible area.
const border = 1

// WindowSize returns the number of chunk columns and rows kept resident for a viewport. Each axis covers
// ceil(pixels / PixelSize) + 1 chunks, which is enough for any scroll offset, plus one border chunk on each
// side.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - int: chunk columns
//   - int: chunk rows
func WindowSize(width, height int) (int, int) {
	columns := common.CeilDiv(width, PixelSize) + 1 + 2*border
	rows := common.CeilDiv(height, PixelSize) + 1 + 2*border
	return columns, rows
}

// Capacity returns the number of chunks resident for a viewport.
func Capacity(width, height int) int {
	columns, rows := WindowSize(width, height)
	return columns * rows
}

// BufferSize returns the byte size of the chunk storage buffer for a viewport.
func BufferSize(width, height int) uint64 {
	return uint64(Capacity(width, height)) * GPUChunkSize
}

// Window is the rectangle of chunk coordinates resident on the GPU. Slots are laid out row-major starting at
// Origin.
type Window struct {
	Origin  [2]int32
	Columns int
	Rows    int
}

// WindowAt returns the resident window for a camera position in world pixels and a viewport size. The origin
// is the chunk under the camera moved back by the border.
//
// Parameters:
//   - camera: the world pixel at the top-left corner of the viewport
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - Window: the resident chunk window
func WindowAt(camera mgl32.Vec2, width, height int) Window {
	columns, rows := WindowSize(width, height)
	cx := common.FloorDiv(int32(math.Floor(float64(camera.X()))), PixelSize)
	cy := common.FloorDiv(int32(math.Floor(float64(camera.Y()))), PixelSize)
	return Window{
		Origin:  [2]int32{cx - border, cy - border},
		Columns: columns,
		Rows:    rows,
	}
}

// Capacity returns the number of slots in the window.
func (w Window) Capacity() int {
	return w.Columns * w.Rows
}

// Slot returns the row-major slot index of a chunk coordinate, or false if it lies outside the window.
func (w Window) Slot(position [2]int32) (int, bool) {
	x := int(position[0] - w.Origin[0])
	y := int(position[1] - w.Origin[1])
	if x < 0 || y < 0 || x >= w.Columns || y >= w.Rows {
		return -1, false
	}
	return y*w.Columns + x, true
}

// Locals returns the GPU record describing this window to the chunk shader.
func (w Window) Locals() GPUChunkLocals {
	return GPUChunkLocals{
		Origin: w.Origin,
		Size:   [2]uint32{uint32(w.Columns), uint32(w.Rows)},
	}
}
