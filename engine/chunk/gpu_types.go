package chunk

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// GPUChunkSource is the canonical WGSL definition of the Chunk struct.
// Matches the Marshal layout exactly (256 bytes, one byte per tile).
//
//go:embed assets/chunk.wgsl
var GPUChunkSource string

// GPUChunkLocalsSource is the canonical WGSL definition of the ChunkLocals struct.
//
//go:embed assets/chunk_locals.wgsl
var GPUChunkLocalsSource string

const (
	// GPUChunkSize is the byte size of one packed chunk layout.
	GPUChunkSize = Size * Size
	// GPUChunkLocalsSize is the byte size of the ChunkLocals struct as declared in WGSL.
	GPUChunkLocalsSize = 16
	// GPUChunkLocalsStride is the byte size of one ChunkLocals record in its dynamic uniform buffer.
	GPUChunkLocalsStride = common.DynamicOffsetAlignment
)

// Marshal packs the layout into GPUChunkSize bytes: one byte per tile, row-major (y*Size + x). The shader
// reads it as array<u32, 64> and extracts bytes little-endian, so byte i is tile i.
//
// Returns:
//   - []byte: the packed layout
func (c *Chunk) Marshal() []byte {
	buf := make([]byte, GPUChunkSize)
	for y := range c.Layout {
		for x, t := range c.Layout[y] {
			buf[y*Size+x] = byte(t)
		}
	}
	return buf
}

// MarshalWindow packs chunks into the storage buffer layout for a window of the given capacity. Slots past
// len(chunks) are zero, which is an all-Void chunk.
//
// Parameters:
//   - chunks: the window's chunks in row-major slot order
//   - capacity: the number of slots in the window
//
// Returns:
//   - []byte: capacity*GPUChunkSize bytes
//   - error: an error if more chunks are given than the window holds
func MarshalWindow(chunks []Chunk, capacity int) ([]byte, error) {
	if len(chunks) > capacity {
		return nil, fmt.Errorf("chunk: %d chunks exceed window capacity %d", len(chunks), capacity)
	}
	buf := make([]byte, capacity*GPUChunkSize)
	for i := range chunks {
		copy(buf[i*GPUChunkSize:], chunks[i].Marshal())
	}
	return buf, nil
}

// GPUChunkLocals tells the chunk shader which chunk coordinates the resident window covers.
type GPUChunkLocals struct {
	Origin [2]int32  // offset 0: chunk coordinate of slot 0
	Size   [2]uint32 // offset 8: window columns and rows
}

// Marshal serializes the record padded to GPUChunkLocalsStride so it can be selected with a dynamic offset.
//
// Returns:
//   - []byte: GPUChunkLocalsStride bytes; only the first GPUChunkLocalsSize are meaningful
func (l GPUChunkLocals) Marshal() []byte {
	buf := make([]byte, GPUChunkLocalsStride)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(l.Origin[0]))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(l.Origin[1]))
	binary.LittleEndian.PutUint32(buf[8:12], l.Size[0])
	binary.LittleEndian.PutUint32(buf[12:16], l.Size[1])
	return buf
}
