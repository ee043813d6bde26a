package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const spriteSource = `//@oxy:include globals
//@oxy:include entity
//@oxy:group 0 0 storage_uniform globals globals
//@oxy:group 1 0 dynamic_uniform entity entity
//@oxy:provider 1 1 entity_atlas texture
@group(1) @binding(1) var entity_atlas: texture_2d<f32>;
//@oxy:provider 1 2 entity_atlas sampler
@group(1) @binding(2) var entity_sampler: sampler;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

const chunkFragmentSource = `//@oxy:include chunk
//@oxy:include chunk_locals
//@oxy:include tile_data
//@oxy:group 1 0 dynamic_uniform locals chunk_locals
//@oxy:group 1 1 storage_read chunks array<chunk>
//@oxy:group 1 2 storage_read tiles array<tile_data, 256>

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

// TestBindingLookup checks that resources are found by meaning rather than by index.
func TestBindingLookup(t *testing.T) {
	s, err := NewShader("sprite_fs", ShaderTypeFragment, spriteSource)
	if err != nil {
		t.Fatalf("Expected shader, got error: %v", err)
	}

	tests := []struct {
		name        string
		key, role   AnnotationArg
		wantGroup   int
		wantBinding int
		wantOK      bool
	}{
		{"struct binding", AnnotationArgEntity, "", 1, 0, true},
		{"globals", AnnotationArgGlobals, "", 0, 0, true},
		{"texture role", AnnotationArgEntityAtlas, AnnotationArgTexture, 1, 1, true},
		{"sampler role", AnnotationArgEntityAtlas, AnnotationArgSampler, 1, 2, true},
		{"undeclared", AnnotationArgLight, "", -1, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, b, ok := s.Binding(tt.key, tt.role)
			if g != tt.wantGroup || b != tt.wantBinding || ok != tt.wantOK {
				t.Errorf("Expected (%d, %d, %v), got (%d, %d, %v)", tt.wantGroup, tt.wantBinding, tt.wantOK, g, b, ok)
			}
		})
	}
}

// TestDynamicUniformLayout checks the dynamic offset flag and the bound window size.
func TestDynamicUniformLayout(t *testing.T) {
	s, err := NewShader("sprite_fs", ShaderTypeFragment, spriteSource)
	if err != nil {
		t.Fatalf("Expected shader, got error: %v", err)
	}

	desc := s.BindGroupLayoutDescriptor(1)
	if len(desc.Entries) != 3 {
		t.Fatalf("Expected 3 entries in group 1, got %d", len(desc.Entries))
	}
	entity := desc.Entries[0]
	if entity.Buffer.Type != wgpu.BufferBindingTypeUniform || !entity.Buffer.HasDynamicOffset {
		t.Errorf("Expected dynamic uniform at binding 0, got %+v", entity.Buffer)
	}
	if entity.Buffer.MinBindingSize != 32 {
		t.Errorf("Expected entity window of 32 bytes, got %d", entity.Buffer.MinBindingSize)
	}
	if entity.Visibility != wgpu.ShaderStageFragment {
		t.Errorf("Expected fragment visibility, got %v", entity.Visibility)
	}
	if desc.Entries[1].Texture.SampleType == wgpu.TextureSampleTypeUndefined {
		t.Error("Expected a texture entry at binding 1")
	}
	if desc.Entries[2].Sampler.Type == wgpu.SamplerBindingTypeUndefined {
		t.Error("Expected a sampler entry at binding 2")
	}

	globals := s.BindGroupLayoutDescriptor(0)
	if len(globals.Entries) != 1 || globals.Entries[0].Buffer.HasDynamicOffset {
		t.Errorf("Expected one static globals entry, got %+v", globals.Entries)
	}
}

// TestArrayBindings checks that runtime and fixed arrays resolve to their element type.
func TestArrayBindings(t *testing.T) {
	s, err := NewShader("chunk_fs", ShaderTypeFragment, chunkFragmentSource)
	if err != nil {
		t.Fatalf("Expected shader, got error: %v", err)
	}

	if _, b, ok := s.Binding(AnnotationArgChunk, ""); !ok || b != 1 {
		t.Errorf("Expected chunk at binding 1, got %d (%v)", b, ok)
	}
	if _, b, ok := s.Binding(AnnotationArgTileData, ""); !ok || b != 2 {
		t.Errorf("Expected tile_data at binding 2, got %d (%v)", b, ok)
	}
	if _, b, ok := s.Binding(AnnotationArgChunkLocals, ""); !ok || b != 0 {
		t.Errorf("Expected chunk_locals at binding 0, got %d (%v)", b, ok)
	}

	if !strings.Contains(s.Source(), "var<storage, read> tiles: array<TileData, 256>;") {
		t.Error("Expected fixed array declaration in generated source")
	}
	if !strings.Contains(s.Source(), "var<storage, read> chunks: array<Chunk>;") {
		t.Error("Expected runtime array declaration in generated source")
	}

	desc := s.BindGroupLayoutDescriptor(1)
	for _, e := range desc.Entries[1:] {
		if e.Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
			t.Errorf("Expected read-only storage at binding %d, got %v", e.Binding, e.Buffer.Type)
		}
	}
	if s.BindGroupVarName(1, 2) != "tiles" {
		t.Errorf("Expected var name tiles, got %q", s.BindGroupVarName(1, 2))
	}
}

// TestEntryPoints checks that one source serves both stages and that a missing stage is an error.
func TestEntryPoints(t *testing.T) {
	vs, err := NewShader("sprite_vs", ShaderTypeVertex, spriteSource)
	if err != nil {
		t.Fatalf("Expected vertex shader, got error: %v", err)
	}
	if vs.EntryPoint() != "vs_main" {
		t.Errorf("Expected vs_main, got %s", vs.EntryPoint())
	}
	if vs.Module() == nil || vs.Module().Label != "sprite_vs" {
		t.Error("Expected a labeled shader module descriptor")
	}

	_, err = NewShader("chunk_vs", ShaderTypeVertex, chunkFragmentSource)
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("Expected ErrNoEntryPoint, got %v", err)
	}
}

// TestMalformedAnnotations checks that bad annotations are rejected before parsing.
func TestMalformedAnnotations(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown include", "//@oxy:include mesh"},
		{"unknown address space", "//@oxy:group 1 0 storage_write lights light"},
		{"short group", "//@oxy:group 1 0 storage_uniform light"},
		{"bad group number", "//@oxy:group x 0 storage_uniform light light"},
		{"dynamic array", "//@oxy:group 1 0 dynamic_uniform lights array<light>"},
		{"bad array length", "//@oxy:group 1 0 storage_read tiles array<tile_data, many>"},
		{"unknown provider", "//@oxy:provider 1 1 normal_map texture"},
		{"unknown type", "//@oxy:frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.line + "\n@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"
			if _, err := NewShader("bad", ShaderTypeFragment, source); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}
