// Package renderertest provides a recording renderer.RendererBackend for exercising GPU-facing code without
// a device. Every call is validated against the same frame state rules as the wgpu backend and recorded so
// tests can assert on passes, draws, dynamic offsets and buffer contents.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceTargetName is the target recorded for passes into the surface texture.
const SurfaceTargetName = "surface"

// Surface is a window stand-in with a fixed size and no native surface.
type Surface struct {
	W, H int
}

func (s Surface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s Surface) Width() int                                 { return s.W }
func (s Surface) Height() int                                { return s.H }

// Draw is one recorded draw call.
type Draw struct {
	Pipeline    string
	VertexCount uint32
	BindGroups  []string
	Offsets     [][]uint32
}

// Pass is one recorded render pass.
type Pass struct {
	Label  string
	Target string
	Clear  wgpu.Color
	Draws  []Draw
}

// Frame is one recorded frame from BeginFrame to Present or DiscardFrame.
type Frame struct {
	Passes    []Pass
	Submitted bool
	Presented bool
	Discarded bool
}

// Write is one recorded buffer write. Data is a copy.
type Write struct {
	Provider string
	Binding  int
	Offset   uint64
	Data     []byte
}

// BindGroupInit records the buffer sizes a bind group was created with.
type BindGroupInit struct {
	Provider    string
	BufferSizes map[int]uint64
}

// TextureInit records a texture created on a provider.
type TextureInit struct {
	Provider     string
	Binding      int
	Width        uint32
	Height       uint32
	Format       wgpu.TextureFormat
	RenderTarget bool
}

// Backend records everything a Renderer asks of it.
type Backend struct {
	mu sync.Mutex

	// AcquireErrors are returned, in order, by the next BeginFrame calls.
	AcquireErrors []error
	// DrawErr, when set, is returned by every DrawCall.
	DrawErr error
	// ConfigureErrors are returned, in order, by the next ConfigureSurface calls.
	ConfigureErrors []error
	// BindGroupErrors are returned, in order, by the next InitBindGroup calls for the keyed provider label.
	BindGroupErrors map[string][]error

	Configures     [][2]int
	PresentMode    renderer.PresentMode
	Pipelines      []string
	BindGroupInits []BindGroupInit
	TextureInits   []TextureInit
	SamplerInits   []string
	Writes         []Write
	Frames         []Frame
	Released       bool

	initialized map[bind_group_provider.BindGroupProvider]bool
	frame       *Frame
	pass        *Pass
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		initialized: make(map[bind_group_provider.BindGroupProvider]bool),
	}
}

// NewRenderer wires a recording backend into a Renderer sized w by h.
//
// Parameters:
//   - w: the initial surface width
//   - h: the initial surface height
//   - opts: extra renderer options
//
// Returns:
//   - renderer.Renderer: the renderer driving the backend
//   - *Backend: the backend for assertions
func NewRenderer(w, h int, opts ...renderer.RendererBuilderOption) (renderer.Renderer, *Backend, error) {
	b := NewBackend()
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, Surface{W: w, H: h}, append([]renderer.RendererBuilderOption{renderer.WithBackend(b)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return r, b, nil
}

func (b *Backend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.ConfigureErrors) > 0 {
		err := b.ConfigureErrors[0]
		b.ConfigureErrors = b.ConfigureErrors[1:]
		return err
	}
	b.Configures = append(b.Configures, [2]int{width, height})
	return nil
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8Unorm
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if _, err := p.BindGroupLayoutDescriptors(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Pipelines = append(b.Pipelines, p.PipelineKey())
	return nil
}

func (b *Backend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if errs := b.BindGroupErrors[provider.Label()]; len(errs) > 0 {
		b.BindGroupErrors[provider.Label()] = errs[1:]
		return errs[0]
	}

	sizes := make(map[int]uint64)
	for _, entry := range descriptor.Entries {
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			continue
		}
		binding := int(entry.Binding)
		sizes[binding] = common.Coalesce(provider.BufferSize(binding), entry.Buffer.MinBindingSize)
	}
	b.BindGroupInits = append(b.BindGroupInits, BindGroupInit{Provider: provider.Label(), BufferSizes: sizes})
	b.initialized[provider] = true
	return nil
}

func (b *Backend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TextureInits = append(b.TextureInits, TextureInit{
		Provider: provider.Label(),
		Binding:  binding,
		Width:    stagingData.Width,
		Height:   stagingData.Height,
		Format:   wgpu.TextureFormatRGBA8Unorm,
	})
	return nil
}

func (b *Backend) InitRenderTarget(provider bind_group_provider.BindGroupProvider, binding int, width, height uint32, format wgpu.TextureFormat) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TextureInits = append(b.TextureInits, TextureInit{
		Provider:     provider.Label(),
		Binding:      binding,
		Width:        width,
		Height:       height,
		Format:       format,
		RenderTarget: true,
	})
	return nil
}

func (b *Backend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SamplerInits = append(b.SamplerInits, provider.Label())
	return nil
}

func (b *Backend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range writes {
		b.Writes = append(b.Writes, Write{
			Provider: w.Provider.Label(),
			Binding:  w.Binding,
			Offset:   w.Offset,
			Data:     append([]byte(nil), w.Data...),
		})
	}
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame != nil {
		return fmt.Errorf("%w: previous frame not presented", renderer.ErrFrameState)
	}
	if len(b.AcquireErrors) > 0 {
		err := b.AcquireErrors[0]
		b.AcquireErrors = b.AcquireErrors[1:]
		return err
	}
	b.frame = &Frame{}
	return nil
}

func (b *Backend) BeginPass(label string, target renderer.RenderTarget, clear wgpu.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil || b.pass != nil {
		return fmt.Errorf("%w: BeginPass %q", renderer.ErrFrameState, label)
	}
	name := SurfaceTargetName
	if !target.IsSurface() {
		name = target.Provider.Label()
	}
	b.pass = &Pass{Label: label, Target: name, Clear: clear}
	return nil
}

func (b *Backend) DrawCall(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider, dynamicOffsets [][]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return fmt.Errorf("%w: DrawCall %q outside a pass", renderer.ErrFrameState, p.PipelineKey())
	}
	if b.DrawErr != nil {
		return b.DrawErr
	}

	d := Draw{Pipeline: p.PipelineKey(), VertexCount: vertexCount}
	for i, bg := range bindGroups {
		if !b.initialized[bg] {
			return fmt.Errorf("bind group %q at index %d is not initialized", bg.Label(), i)
		}
		d.BindGroups = append(d.BindGroups, bg.Label())
		var offsets []uint32
		if i < len(dynamicOffsets) && dynamicOffsets[i] != nil {
			offsets = append([]uint32(nil), dynamicOffsets[i]...)
		}
		d.Offsets = append(d.Offsets, offsets)
	}
	b.pass.Draws = append(b.pass.Draws, d)
	return nil
}

func (b *Backend) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return fmt.Errorf("%w: EndPass without an open pass", renderer.ErrFrameState)
	}
	b.frame.Passes = append(b.frame.Passes, *b.pass)
	b.pass = nil
	return nil
}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil || b.pass != nil {
		return fmt.Errorf("%w: EndFrame", renderer.ErrFrameState)
	}
	b.frame.Submitted = true
	return nil
}

func (b *Backend) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil {
		return
	}
	b.pass = nil
	b.frame.Discarded = true
	b.Frames = append(b.Frames, *b.frame)
	b.frame = nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil {
		return
	}
	b.frame.Presented = true
	b.Frames = append(b.Frames, *b.frame)
	b.frame = nil
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}

// LastFrame returns the most recently presented or discarded frame.
func (b *Backend) LastFrame() (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) == 0 {
		return Frame{}, false
	}
	return b.Frames[len(b.Frames)-1], true
}

// LastBindGroupInit returns the most recent bind group creation for a provider label.
func (b *Backend) LastBindGroupInit(provider string) (BindGroupInit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.BindGroupInits) - 1; i >= 0; i-- {
		if b.BindGroupInits[i].Provider == provider {
			return b.BindGroupInits[i], true
		}
	}
	return BindGroupInit{}, false
}

// CountBindGroupInits counts bind group creations for a provider label.
func (b *Backend) CountBindGroupInits(provider string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, bg := range b.BindGroupInits {
		if bg.Provider == provider {
			n++
		}
	}
	return n
}

// RenderTargets returns the render target textures created so far.
func (b *Backend) RenderTargets() []TextureInit {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []TextureInit
	for _, t := range b.TextureInits {
		if t.RenderTarget {
			out = append(out, t)
		}
	}
	return out
}

// BufferContents replays every write to a provider binding into a byte slice of the given size, as the GPU
// buffer would hold it.
func (b *Backend) BufferContents(provider string, binding int, size uint64) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, size)
	for _, w := range b.Writes {
		if w.Provider != provider || w.Binding != binding || w.Offset >= size {
			continue
		}
		copy(out[w.Offset:], w.Data)
	}
	return out
}

// WritesTo returns the writes recorded for a provider binding.
func (b *Backend) WritesTo(provider string, binding int) []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Write
	for _, w := range b.Writes {
		if w.Provider == provider && w.Binding == binding {
			out = append(out, w)
		}
	}
	return out
}
