package tile

var catalog = buildCatalog()

func buildCatalog() [256]TileData {
	var c [256]TileData
	for i := range c {
		c[i] = newTileData(Tile(i).Attributes())
	}
	return c
}

// Lookup returns the GPU record for the tile identifier. It is total over [0, 255]; identifiers without a
// definition resolve to the Void record.
func Lookup(id uint8) TileData {
	return catalog[id]
}

// Catalog returns a copy of the dense 256-entry table the chunk shader indexes by raw tile byte.
func Catalog() [256]TileData {
	return catalog
}

// MarshalCatalog packs the whole catalog into the exact byte layout of the shader's `array<TileData, 256>`.
//
// Returns:
//   - []byte: CatalogSize bytes, one TileDataSize record per identifier in identifier order
func MarshalCatalog() []byte {
	out := make([]byte, 0, CatalogSize)
	for i := range catalog {
		out = catalog[i].AppendTo(out)
	}
	return out
}
