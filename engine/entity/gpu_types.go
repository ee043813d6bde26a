package entity

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// GPUEntitySource is the canonical WGSL definition of the Entity struct.
// Matches GPUEntity layout exactly (32 bytes).
//
//go:embed assets/entity.wgsl
var GPUEntitySource string

const (
	// GPUEntitySize is the byte size of the Entity struct as declared in WGSL.
	GPUEntitySize = 32
	// GPUEntityStride is the byte distance between consecutive entities in the dynamic uniform buffer.
	GPUEntityStride = common.DynamicOffsetAlignment
)

// GPUEntity is the GPU representation of one sprite, selected per draw through a dynamic offset.
type GPUEntity struct {
	Position      [2]float32 // offset  0: top-left in world tiles
	AtlasPosition [2]uint32  // offset  8: atlas cell
	Size          [2]uint32  // offset 16: footprint in cells
	Color         uint32     // offset 24: RGBA8, red in the low byte
	Detail        uint32     // offset 28: RGBA8, red in the low byte
}

// Marshal serializes the GPUEntity padded to GPUEntityStride.
//
// Returns:
//   - []byte: GPUEntityStride bytes; only the first GPUEntitySize are meaningful
func (g GPUEntity) Marshal() []byte {
	buf := make([]byte, GPUEntityStride)
	g.put(buf)
	return buf
}

func (g GPUEntity) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], g.AtlasPosition[0])
	binary.LittleEndian.PutUint32(buf[12:16], g.AtlasPosition[1])
	binary.LittleEndian.PutUint32(buf[16:20], g.Size[0])
	binary.LittleEndian.PutUint32(buf[20:24], g.Size[1])
	binary.LittleEndian.PutUint32(buf[24:28], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], g.Detail)
}

// MarshalEntities packs entities into consecutive GPUEntityStride records, in draw order.
//
// Parameters:
//   - entities: the entities to pack
//
// Returns:
//   - []byte: len(entities)*GPUEntityStride bytes
func MarshalEntities(entities []Entity) []byte {
	buf := make([]byte, len(entities)*GPUEntityStride)
	for i, e := range entities {
		e.GPU().put(buf[i*GPUEntityStride:])
	}
	return buf
}
