package light

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (16 bytes).
//
//go:embed assets/light.wgsl
var GPULightSource string

const (
	// GPULightSize is the byte size of the Light struct as declared in WGSL.
	GPULightSize = 16
	// GPULightStride is the byte distance between consecutive lights in the dynamic uniform buffer.
	GPULightStride = common.DynamicOffsetAlignment
)

// GPULight is the GPU representation of a single light, selected per draw through a dynamic offset.
type GPULight struct {
	Position  [2]float32 // offset  0: center in world tiles
	Color     uint32     // offset  8: RGBA8, red in the low byte
	Magnitude float32    // offset 12: falloff radius in tiles
}

// Marshal serializes the GPULight padded to GPULightStride.
//
// Returns:
//   - []byte: GPULightStride bytes; only the first GPULightSize are meaningful
func (g GPULight) Marshal() []byte {
	buf := make([]byte, GPULightStride)
	g.put(buf)
	return buf
}

func (g GPULight) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], g.Color)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Magnitude))
}

// MarshalLights packs lights into consecutive GPULightStride records, in order. Light i starts at byte
// i*GPULightStride, which is the dynamic offset its draw call uses.
//
// Parameters:
//   - lights: the lights to pack
//
// Returns:
//   - []byte: len(lights)*GPULightStride bytes
func MarshalLights(lights []Light) []byte {
	buf := make([]byte, len(lights)*GPULightStride)
	for i, l := range lights {
		l.GPU().put(buf[i*GPULightStride:])
	}
	return buf
}
