package globals

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUGlobalsSource is the canonical WGSL definition of the Globals struct.
// Matches GPUGlobals layout exactly (16 bytes).
//
//go:embed assets/globals.wgsl
var GPUGlobalsSource string

// GPUGlobalsSize is the byte size of the Globals uniform.
const GPUGlobalsSize = 16

// GPUGlobals is the process-wide uniform shared by every pipeline through bind group 0.
type GPUGlobals struct {
	Resolution [2]uint32  // offset 0: viewport size in pixels
	Camera     [2]float32 // offset 8: world pixel at the top-left corner of the viewport
}

// Marshal serializes the GPUGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g GPUGlobals) Marshal() []byte {
	buf := make([]byte, GPUGlobalsSize)
	binary.LittleEndian.PutUint32(buf[0:4], g.Resolution[0])
	binary.LittleEndian.PutUint32(buf[4:8], g.Resolution[1])
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Camera[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Camera[1]))
	return buf
}
