package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/chunk"
	"github.com/Carmen-Shannon/oxy-tiles/engine/entity"
	"github.com/Carmen-Shannon/oxy-tiles/engine/globals"
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
)

// TestRecordSizesMatchWGSL checks every packed GPU record against the size the shaders see.
func TestRecordSizesMatchWGSL(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   uint64
	}{
		{"Globals", globals.GPUGlobalsSource, globals.GPUGlobalsSize},
		{"TileData", tile.GPUTileDataSource, tile.TileDataSize},
		{"Chunk", chunk.GPUChunkSource, chunk.GPUChunkSize},
		{"ChunkLocals", chunk.GPUChunkLocalsSource, chunk.GPUChunkLocalsSize},
		{"Entity", entity.GPUEntitySource, entity.GPUEntitySize},
		{"Light", light.GPULightSource, light.GPULightSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StructSize(tt.source, tt.name)
			if !ok {
				t.Fatalf("Expected struct %s to resolve", tt.name)
			}
			if got != tt.want {
				t.Errorf("Expected %s to be %d bytes, got %d", tt.name, tt.want, got)
			}
		})
	}
}

// TestStructLayoutRules checks alignment padding, out-of-order references and trailing runtime arrays.
func TestStructLayoutRules(t *testing.T) {
	const source = `
struct Outer {
    inner: Inner, // declared below
    flag: u32,
}
/* struct Ignored { a: f32 } */
struct Inner {
    a: f32,
    b: vec3<f32>,
}
struct Packed {
    head: vec2u,
    items: array<Inner, 2>,
}
struct Tail {
    count: u32,
    items: array<vec4f>,
}
struct Middle {
    items: array<u32>,
    count: u32,
}
struct Builtin {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}
struct Cycle {
    next: Cycle,
}
`
	layouts := StructLayouts(source)

	tests := []struct {
		name      string
		want      Layout
		wantFound bool
	}{
		{"Inner", Layout{Size: 32, Align: 16}, true},
		{"Outer", Layout{Size: 48, Align: 16}, true},
		{"Packed", Layout{Size: 80, Align: 16}, true},
		{"Tail", Layout{Size: 32, Align: 16}, true},
		{"Builtin", Layout{Size: 8, Align: 8}, true},
		{"Middle", Layout{}, false},
		{"Cycle", Layout{}, false},
		{"Ignored", Layout{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := layouts[tt.name]
			if found != tt.wantFound || got != tt.want {
				t.Errorf("Expected %+v (%v), got %+v (%v)", tt.want, tt.wantFound, got, found)
			}
		})
	}
}

// TestStripComments checks that nested block comments and line comments are removed but lines are kept.
func TestStripComments(t *testing.T) {
	got := stripComments("a /* x /* y */ z */ b // c\nd")
	if got != "a  b \nd" {
		t.Errorf("Expected %q, got %q", "a  b \nd", got)
	}
}
