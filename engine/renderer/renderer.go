package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	log "github.com/sirupsen/logrus"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	width, height int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
}

// Renderer is the rendering context. It owns the device, queue and surface through its backend and is passed
// explicitly to everything that records GPU work. There is no global GPU state.
//
// The Renderer caches pipelines by key so draw calls can name them, and tracks the configured surface size so
// repeated or zero-sized resizes never touch the surface.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline objects via the backend and caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new size. A zero width or height and an unchanged size are no-ops.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - bool: true if the surface was reconfigured
	//   - error: an error if the surface could not be configured
	Resize(width, height int) (bool, error)

	// Size returns the configured surface size.
	Size() (width, height int)

	// SetPresentMode changes the present mode and reconfigures the surface at its current size.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	SetPresentMode(mode PresentMode) error

	// SurfaceFormat returns the texture format of the surface, used as the color target of surface pipelines.
	SurfaceFormat() wgpu.TextureFormat

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them on the
	// given BindGroupProvider. Textures and samplers must be initialized via InitTextureView,
	// InitRenderTarget and InitSampler before calling this method.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView creates a GPU texture from staging data and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if the staging data is malformed or texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitRenderTarget creates an offscreen color texture that one pass renders into and a later pass samples.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the texture on
	//   - bindingKey: the binding index for this texture
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - format: the texture format
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitRenderTarget(provider bind_group_provider.BindGroupProvider, bindingKey int, width, height uint32, format wgpu.TextureFormat) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the surface texture and opens the frame's command encoder.
	//
	// Returns:
	//   - error: a *SurfaceError that matches ErrFrameSkipped or ErrSurfaceFatal when acquisition fails
	BeginFrame() error

	// BeginPass starts a render pass into target cleared to clear.
	//
	// Parameters:
	//   - label: a debug label for the pass
	//   - target: the color attachment, SurfaceTarget for the acquired surface texture
	//   - clear: the clear color
	//
	// Returns:
	//   - error: an error if no frame is open or the target has no texture view
	BeginPass(label string, target RenderTarget, clear wgpu.Color) error

	// DrawCall encodes one draw of the cached pipeline within the current pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - bindGroups: the providers set at group indices 0..n-1
	//   - dynamicOffsets: per-group dynamic offsets, nil for groups without dynamic bindings
	//
	// Returns:
	//   - error: ErrPipelineNotFound or a backend recording error
	DrawCall(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, dynamicOffsets [][]uint32) error

	// EndPass ends the current render pass.
	EndPass() error

	// EndFrame submits every pass recorded since BeginFrame as a single batch.
	EndFrame() error

	// DiscardFrame drops the open frame, if any, without submitting it.
	DiscardFrame()

	// Present presents the surface to the display and releases the surface texture.
	Present()

	// Release releases every pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the rendering context for a window surface. The backend requests an adapter and a
// device, then the surface is configured at the window's current size.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window to render into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the rendering context
//   - error: ErrNoSuitableAdapter, ErrNoSuitableDevice or ErrIncompatibleSurface on setup failure
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		if surface == nil {
			return nil, fmt.Errorf("%w: no window surface", ErrIncompatibleSurface)
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}
	r.backend.SetPresentMode(r.presentMode)

	if surface != nil {
		if _, err := r.Resize(surface.Width(), surface.Height()); err != nil {
			r.backend.Release()
			return nil, err
		}
	}
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
		log.WithFields(log.Fields{"pipeline": key}).Debug("render pipeline registered")
	}
	return nil
}

func (r *renderer) Resize(width, height int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return false, nil
	}
	if width == r.width && height == r.height {
		return false, nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return false, err
	}
	r.width, r.height = width, height
	return true, nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	if r.width == 0 || r.height == 0 {
		return nil
	}
	return r.backend.ConfigureSurface(r.width, r.height)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	if err := r.backend.InitBindGroup(provider, descriptor); err != nil {
		return fmt.Errorf("init bind group %q: %w", provider.Label(), err)
	}
	return nil
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	if !stagingData.Valid() {
		return fmt.Errorf("init texture %q binding %d: %dx%d staging data has %d bytes", provider.Label(), bindingKey, stagingData.Width, stagingData.Height, len(stagingData.Pixels))
	}
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitRenderTarget(provider bind_group_provider.BindGroupProvider, bindingKey int, width, height uint32, format wgpu.TextureFormat) error {
	return r.backend.InitRenderTarget(provider, bindingKey, width, height, format)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	if err := r.backend.BeginFrame(); err != nil {
		if errors.Is(err, ErrFrameState) {
			return err
		}
		return classifySurfaceError(err)
	}
	return nil
}

func (r *renderer) BeginPass(label string, target RenderTarget, clear wgpu.Color) error {
	return r.backend.BeginPass(label, target, clear)
}

func (r *renderer) DrawCall(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, dynamicOffsets [][]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	return r.backend.DrawCall(p, p.VertexCount(), bindGroups, dynamicOffsets)
}

func (r *renderer) EndPass() error {
	return r.backend.EndPass()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) DiscardFrame() {
	r.backend.DiscardFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
