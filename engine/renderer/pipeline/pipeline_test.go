package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const lightSource = `//@oxy:include globals
//@oxy:include light
//@oxy:group 0 0 storage_uniform globals globals
//@oxy:group 1 0 dynamic_uniform light light
//@oxy:provider 1 1 unlit texture
@group(1) @binding(1) var unlit: texture_2d<f32>;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(light.position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureLoad(unlit, vec2<i32>(0, 0), 0);
}
`

const conflictingSource = `//@oxy:include light
//@oxy:group 1 0 dynamic_uniform light light
//@oxy:provider 1 1 unlit sampler
@group(1) @binding(1) var unlit: sampler;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func mustShader(t *testing.T, key string, shaderType shader.ShaderType, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, shaderType, source)
	if err != nil {
		t.Fatalf("Expected shader %s, got error: %v", key, err)
	}
	return s
}

// TestBindGroupLayoutMerge checks that both stages contribute to one layout per group.
func TestBindGroupLayoutMerge(t *testing.T) {
	p := NewPipeline("light",
		WithShaders(
			mustShader(t, "light_vs", shader.ShaderTypeVertex, lightSource),
			mustShader(t, "light_fs", shader.ShaderTypeFragment, lightSource),
		),
	)

	descs, err := p.BindGroupLayoutDescriptors()
	if err != nil {
		t.Fatalf("Expected layouts, got error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(descs))
	}

	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	instance := descs[1]
	if instance.Label != "light_group_1" {
		t.Errorf("Expected label light_group_1, got %s", instance.Label)
	}
	if len(instance.Entries) != 2 {
		t.Fatalf("Expected 2 entries in group 1, got %d", len(instance.Entries))
	}
	for i, e := range instance.Entries {
		if e.Binding != uint32(i) {
			t.Errorf("Expected entries sorted by binding, got %d at %d", e.Binding, i)
		}
		if e.Visibility != both {
			t.Errorf("Expected binding %d visible to both stages, got %v", e.Binding, e.Visibility)
		}
	}
	if !instance.Entries[0].Buffer.HasDynamicOffset {
		t.Error("Expected the light binding to keep its dynamic offset")
	}
	if instance.Entries[0].Buffer.MinBindingSize != 16 {
		t.Errorf("Expected light window of 16 bytes, got %d", instance.Entries[0].Buffer.MinBindingSize)
	}
}

// TestBindGroupLayoutConflict checks that a binding declared as different resources is rejected.
func TestBindGroupLayoutConflict(t *testing.T) {
	p := NewPipeline("broken",
		WithShaders(
			mustShader(t, "light_vs", shader.ShaderTypeVertex, lightSource),
			mustShader(t, "broken_fs", shader.ShaderTypeFragment, conflictingSource),
		),
	)
	if _, err := p.BindGroupLayoutDescriptors(); !errors.Is(err, ErrLayoutConflict) {
		t.Errorf("Expected ErrLayoutConflict, got %v", err)
	}
}

// TestMissingShader checks that both stages are required.
func TestMissingShader(t *testing.T) {
	p := NewPipeline("half",
		WithShaders(mustShader(t, "light_vs", shader.ShaderTypeVertex, lightSource), nil),
	)
	if _, err := p.BindGroupLayoutDescriptors(); !errors.Is(err, ErrMissingShader) {
		t.Errorf("Expected ErrMissingShader, got %v", err)
	}
	if p.Shader(shader.ShaderTypeFragment) != nil {
		t.Error("Expected no fragment shader")
	}
}

// TestDefaults checks the quad defaults and that options override them.
func TestDefaults(t *testing.T) {
	p := NewPipeline("quad")
	prim := p.Primitive()
	if p.VertexCount() != 4 || prim.Topology != wgpu.PrimitiveTopologyTriangleStrip || prim.CullMode != wgpu.CullModeNone {
		t.Errorf("Expected an unculled 4 vertex strip, got %d %+v", p.VertexCount(), prim)
	}
	if p.TargetFormat() != wgpu.TextureFormatUndefined {
		t.Errorf("Expected the surface format by default, got %v", p.TargetFormat())
	}
	if p.Blend() != BlendAlpha || *p.BlendState() != *AlphaBlend() {
		t.Errorf("Expected alpha blending by default, got %v", p.Blend())
	}

	p = NewPipeline("lit",
		WithVertexCount(6),
		WithOffscreenTarget(wgpu.TextureFormatRGBA8Unorm),
		WithBlend(BlendAdditive),
	)
	if p.VertexCount() != 6 || p.TargetFormat() != wgpu.TextureFormatRGBA8Unorm || p.Blend() != BlendAdditive {
		t.Errorf("Expected options to apply, got %d %v %v", p.VertexCount(), p.TargetFormat(), p.Blend())
	}

	p = NewPipeline("zero", WithVertexCount(0))
	if p.VertexCount() != 4 {
		t.Errorf("Expected a zero vertex count to keep the quad, got %d", p.VertexCount())
	}
	p.Release()
}

// TestBlendModeState checks the blend state each mode hands to the backend.
func TestBlendModeState(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want *wgpu.BlendState
		name string
	}{
		{BlendAlpha, AlphaBlend(), "alpha"},
		{BlendAdditive, AdditiveBlend(), "additive"},
		{BlendReplace, nil, "replace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.State()
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
			if tt.mode.String() != tt.name {
				t.Errorf("Expected name %s, got %s", tt.name, tt.mode.String())
			}
		})
	}
	if BlendMode(9).String() != "BlendMode(9)" {
		t.Errorf("Expected an unknown mode to print its value, got %s", BlendMode(9).String())
	}
}

// TestAdditiveBlend checks that overlapping lights sum their color.
func TestAdditiveBlend(t *testing.T) {
	b := AdditiveBlend()
	if b.Color.SrcFactor != wgpu.BlendFactorOne || b.Color.DstFactor != wgpu.BlendFactorOne || b.Color.Operation != wgpu.BlendOperationAdd {
		t.Errorf("Expected One + One color blending, got %+v", b.Color)
	}
	if b.Alpha.DstFactor != wgpu.BlendFactorZero {
		t.Errorf("Expected alpha to be replaced, got %+v", b.Alpha)
	}
}
