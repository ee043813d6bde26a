package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const testSource = `//@oxy:include globals
//@oxy:group 0 0 storage_uniform globals globals

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(globals.camera, 0.0, 1.0);
}
`

func testPipeline(t *testing.T, key string) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, testSource)
	if err != nil {
		t.Fatalf("Expected vertex shader, got error: %v", err)
	}
	fs, err := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, testSource)
	if err != nil {
		t.Fatalf("Expected fragment shader, got error: %v", err)
	}
	return pipeline.NewPipeline(key, pipeline.WithShaders(vs, fs))
}

// TestNewRendererConfiguresSurface checks the initial configuration.
func TestNewRendererConfiguresSurface(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	if len(backend.Configures) != 1 || backend.Configures[0] != [2]int{640, 480} {
		t.Errorf("Expected one 640x480 configure, got %v", backend.Configures)
	}
	if backend.PresentMode != renderer.PresentModeVSync {
		t.Errorf("Expected vsync by default, got %v", backend.PresentMode)
	}
	if w, h := r.Size(); w != 640 || h != 480 {
		t.Errorf("Expected size 640x480, got %dx%d", w, h)
	}
}

// TestNewRendererRequiresSurface checks that the wgpu backend cannot start without a window.
func TestNewRendererRequiresSurface(t *testing.T) {
	_, err := renderer.NewRenderer(renderer.BackendTypeWGPU, nil)
	if !errors.Is(err, renderer.ErrIncompatibleSurface) {
		t.Errorf("Expected ErrIncompatibleSurface, got %v", err)
	}
}

// TestResize checks that only real size changes reconfigure the surface.
func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantChanged   bool
	}{
		{"unchanged", 640, 480, false},
		{"zero width", 0, 480, false},
		{"zero height", 640, 0, false},
		{"grow", 1280, 720, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, backend, err := renderertest.NewRenderer(640, 480)
			if err != nil {
				t.Fatalf("Expected renderer, got error: %v", err)
			}
			changed, err := r.Resize(tt.width, tt.height)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("Expected changed=%v, got %v", tt.wantChanged, changed)
			}
			wantConfigures := 1
			if tt.wantChanged {
				wantConfigures = 2
			}
			if len(backend.Configures) != wantConfigures {
				t.Errorf("Expected %d configures, got %d", wantConfigures, len(backend.Configures))
			}
		})
	}
}

// TestSetPresentModeReconfigures checks that switching modes applies immediately.
func TestSetPresentModeReconfigures(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	if err := r.SetPresentMode(renderer.PresentModeUncapped); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if backend.PresentMode != renderer.PresentModeUncapped {
		t.Errorf("Expected uncapped present mode, got %v", backend.PresentMode)
	}
	if len(backend.Configures) != 2 {
		t.Errorf("Expected surface to be reconfigured, got %d configures", len(backend.Configures))
	}
}

// TestRegisterPipelinesOnce checks that a key is only registered with the backend once.
func TestRegisterPipelinesOnce(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	p := testPipeline(t, "flat")
	if err := r.RegisterPipelines(p, p); err != nil {
		t.Fatalf("Expected registration, got error: %v", err)
	}
	if err := r.RegisterPipelines(p); err != nil {
		t.Fatalf("Expected registration, got error: %v", err)
	}
	if len(backend.Pipelines) != 1 {
		t.Errorf("Expected 1 backend registration, got %d", len(backend.Pipelines))
	}
	if r.Pipeline("flat") != p {
		t.Error("Expected pipeline to be cached by key")
	}
}

// TestFrame records a full frame and checks what reached the backend.
func TestFrame(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	p := testPipeline(t, "flat")
	if err := r.RegisterPipelines(p); err != nil {
		t.Fatalf("Expected registration, got error: %v", err)
	}
	descs, err := p.BindGroupLayoutDescriptors()
	if err != nil {
		t.Fatalf("Expected layouts, got error: %v", err)
	}
	globals := bind_group_provider.NewBindGroupProvider("globals")
	if err := r.InitBindGroup(globals, descs[0]); err != nil {
		t.Fatalf("Expected bind group, got error: %v", err)
	}
	if bg, _ := backend.LastBindGroupInit("globals"); bg.BufferSizes[0] != 16 {
		t.Errorf("Expected a 16 byte globals buffer, got %d", bg.BufferSizes[0])
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("Expected frame, got error: %v", err)
	}
	clear := wgpu.Color{R: 0.1, A: 1}
	if err := r.BeginPass("main", renderer.SurfaceTarget, clear); err != nil {
		t.Fatalf("Expected pass, got error: %v", err)
	}
	if err := r.DrawCall("flat", []bind_group_provider.BindGroupProvider{globals}, nil); err != nil {
		t.Fatalf("Expected draw, got error: %v", err)
	}
	if err := r.DrawCall("missing", nil, nil); !errors.Is(err, renderer.ErrPipelineNotFound) {
		t.Errorf("Expected ErrPipelineNotFound, got %v", err)
	}
	if err := r.EndPass(); err != nil {
		t.Fatalf("Expected pass to end, got error: %v", err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatalf("Expected submission, got error: %v", err)
	}
	r.Present()

	frame, ok := backend.LastFrame()
	if !ok || !frame.Submitted || !frame.Presented {
		t.Fatalf("Expected a presented frame, got %+v", frame)
	}
	if len(frame.Passes) != 1 || frame.Passes[0].Clear != clear || frame.Passes[0].Target != renderertest.SurfaceTargetName {
		t.Fatalf("Expected one surface pass, got %+v", frame.Passes)
	}
	draws := frame.Passes[0].Draws
	if len(draws) != 1 || draws[0].VertexCount != 4 || draws[0].BindGroups[0] != "globals" {
		t.Errorf("Expected one 4 vertex draw with globals, got %+v", draws)
	}
}

// TestFrameState checks that calls out of order are rejected and not classified as surface errors.
func TestFrameState(t *testing.T) {
	r, _, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	if err := r.BeginPass("early", renderer.SurfaceTarget, wgpu.Color{}); !errors.Is(err, renderer.ErrFrameState) {
		t.Errorf("Expected ErrFrameState before BeginFrame, got %v", err)
	}
	if err := r.BeginFrame(); err != nil {
		t.Fatalf("Expected frame, got error: %v", err)
	}
	err = r.BeginFrame()
	if !errors.Is(err, renderer.ErrFrameState) {
		t.Errorf("Expected ErrFrameState on a second BeginFrame, got %v", err)
	}
	var se *renderer.SurfaceError
	if errors.As(err, &se) {
		t.Error("Expected frame state errors not to be surface errors")
	}
	r.DiscardFrame()
	if err := r.BeginFrame(); err != nil {
		t.Errorf("Expected a new frame after discard, got %v", err)
	}
}

// TestBeginFrameClassifiesAcquireErrors checks transient and fatal acquisition failures.
func TestBeginFrameClassifiesAcquireErrors(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	backend.AcquireErrors = []error{errors.New("Timeout"), errors.New("Lost")}

	err = r.BeginFrame()
	if !errors.Is(err, renderer.ErrFrameSkipped) {
		t.Errorf("Expected ErrFrameSkipped, got %v", err)
	}
	err = r.BeginFrame()
	if !errors.Is(err, renderer.ErrSurfaceFatal) {
		t.Errorf("Expected ErrSurfaceFatal, got %v", err)
	}
	var se *renderer.SurfaceError
	if !errors.As(err, &se) || se.Status != renderer.SurfaceStatusLost {
		t.Errorf("Expected a lost surface error, got %v", err)
	}
}

// TestInitTextureViewValidatesStaging checks that malformed pixel data never reaches the backend.
func TestInitTextureViewValidatesStaging(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	provider := bind_group_provider.NewBindGroupProvider("atlas")
	bad := common.TextureStagingData{Width: 2, Height: 2, Pixels: make([]byte, 3)}
	if err := r.InitTextureView(provider, 0, bad); err == nil {
		t.Error("Expected an error for short pixel data")
	}
	if len(backend.TextureInits) != 0 {
		t.Errorf("Expected no textures created, got %d", len(backend.TextureInits))
	}
}

// TestRelease checks that the backend is released with the renderer.
func TestRelease(t *testing.T) {
	r, backend, err := renderertest.NewRenderer(640, 480)
	if err != nil {
		t.Fatalf("Expected renderer, got error: %v", err)
	}
	if err := r.RegisterPipelines(testPipeline(t, "flat")); err != nil {
		t.Fatalf("Expected registration, got error: %v", err)
	}
	r.Release()
	if !backend.Released {
		t.Error("Expected backend to be released")
	}
	if len(r.Pipelines()) != 0 {
		t.Errorf("Expected pipeline cache to be emptied, got %d", len(r.Pipelines()))
	}
}

// TestParseBackendType checks the accepted backend names.
func TestParseBackendType(t *testing.T) {
	for _, name := range []string{"wgpu", "WebGPU", ""} {
		if bt, err := renderer.ParseBackendType(name); err != nil || bt != renderer.BackendTypeWGPU {
			t.Errorf("Expected %q to select wgpu, got %v %v", name, bt, err)
		}
	}
	if _, err := renderer.ParseBackendType("vulkan"); !errors.Is(err, renderer.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}
