package tile

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// GPUTileDataSource is the canonical WGSL definition of the TileData struct.
// Matches TileData layout exactly (16 bytes).
//
//go:embed assets/tile_data.wgsl
var GPUTileDataSource string

const (
	// TileDataSize is the byte size of one TileData record in a WGSL storage array.
	TileDataSize = 16
	// CatalogSize is the byte size of the full 256-entry catalog.
	CatalogSize = TileDataSize * 256
)

// TileData is the GPU-side render record for one tile identifier.
//
// Layout (16 bytes):
//
//	offset 0:  atlas_position vec2<i32>
//	offset 8:  color          u32 (RGBA8, red in the low byte)
//	offset 12: detail         u32 (RGBA8, red in the low byte)
type TileData struct {
	AtlasPosition [2]int32
	Color         uint32
	Detail        uint32
}

func newTileData(a Attributes) TileData {
	return TileData{
		AtlasPosition: a.AtlasPosition,
		Color:         a.Primary.Pack(),
		Detail:        common.Coalesce(a.Secondary, a.Primary).Pack(),
	}
}

// AppendTo appends the record's TileDataSize bytes to dst.
func (d TileData) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.AtlasPosition[0]))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(d.AtlasPosition[1]))
	dst = binary.LittleEndian.AppendUint32(dst, d.Color)
	dst = binary.LittleEndian.AppendUint32(dst, d.Detail)
	return dst
}
