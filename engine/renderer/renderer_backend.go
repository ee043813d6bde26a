package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// ParseBackendType maps a configuration string onto a backend type. An empty name selects WGPU.
//
// Parameters:
//   - name: the configured backend name
//
// Returns:
//   - RendererBackendType: the matching backend type
//   - error: ErrUnknownBackend if the name is not recognised
func ParseBackendType(name string) (RendererBackendType, error) {
	switch strings.ToLower(name) {
	case "wgpu", "webgpu", "":
		return BackendTypeWGPU, nil
	default:
		return BackendTypeWGPU, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// SurfaceSource is the window collaborator the renderer presents into.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// RenderTarget selects the color attachment of a render pass. A nil Provider targets the surface texture
// acquired by BeginFrame; otherwise the texture view stored on Provider at Binding is used.
type RenderTarget struct {
	Provider bind_group_provider.BindGroupProvider
	Binding  int
}

// SurfaceTarget is the RenderTarget for the acquired surface texture.
var SurfaceTarget = RenderTarget{}

// IsSurface reports whether the target is the surface texture.
func (t RenderTarget) IsSurface() bool {
	return t.Provider == nil
}

// RendererBackend is the GPU API seam used by the Renderer. Every method is called from the render thread.
//
// A frame is driven as: BeginFrame, then one or more BeginPass/DrawCall/EndPass sequences, then EndFrame
// to submit everything in a single batch, then Present. DiscardFrame drops a frame that failed to record.
type RendererBackend interface {
	// ConfigureSurface configures the surface for the given size. Callers never pass a zero dimension.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: ErrIncompatibleSurface if the surface has no usable format
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the texture format the surface was configured with.
	SurfaceFormat() wgpu.TextureFormat

	// RegisterRenderPipeline creates the GPU render pipeline for p and stores it via SetRenderPipeline.
	//
	// Parameters:
	//   - p: the pipeline to create
	//
	// Returns:
	//   - error: an error if shader module, layout or pipeline creation fails
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitBindGroup creates any missing buffers and the bind group for provider. Buffers are allocated at
	// provider.BufferSize(binding) when set, else at the entry's MinBindingSize. Textures and samplers must
	// be staged on the provider first.
	//
	// Parameters:
	//   - provider: the provider to populate
	//   - descriptor: the bind group layout descriptor
	//
	// Returns:
	//   - error: an error if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView uploads staging data into a new sampled texture stored on provider at binding.
	//
	// Parameters:
	//   - provider: the provider to store the texture on
	//   - binding: the binding index
	//   - stagingData: RGBA8 pixels and dimensions
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitRenderTarget creates a texture usable both as a color attachment and as a sampled texture,
	// replacing any texture already stored on provider at binding.
	//
	// Parameters:
	//   - provider: the provider to store the texture on
	//   - binding: the binding index
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - format: the texture format
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitRenderTarget(provider bind_group_provider.BindGroupProvider, binding int, width, height uint32, format wgpu.TextureFormat) error

	// InitSampler creates a sampler stored on provider at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every write. Writes targeting a binding without a buffer are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the surface texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: a *SurfaceError when acquisition fails, or ErrFrameState if a frame is already open
	BeginFrame() error

	// BeginPass starts a render pass into target, cleared to clear.
	BeginPass(label string, target RenderTarget, clear wgpu.Color) error

	// DrawCall encodes one draw of vertexCount vertices in the current pass. dynamicOffsets[i] holds the
	// offsets for bindGroups[i] and may be nil.
	DrawCall(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider, dynamicOffsets [][]uint32) error

	// EndPass ends the current render pass.
	EndPass() error

	// EndFrame finishes the command encoder and submits it.
	EndFrame() error

	// DiscardFrame drops the open frame without submitting, releasing the surface texture.
	DiscardFrame()

	// Present presents the submitted frame.
	Present()

	// Release releases the device, surface and instance.
	Release()
}
