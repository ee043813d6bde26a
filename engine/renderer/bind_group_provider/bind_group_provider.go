package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite is one queued upload: Data is copied into the buffer at Binding on Provider, starting at Offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// bufferSizes holds the requested byte size of each buffer binding. A binding without an entry is
	// allocated at the layout's MinBindingSize.
	bufferSizes map[int]uint64

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout created for this provider, or nil if not initialized with the Renderer.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds the GPU textures backing textureViews, keyed by binding index.
	textures map[int]*wgpu.Texture
	// textureViews holds the GPU texture views created for this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers created for this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler
}

// BindGroupProvider owns the GPU resources behind one bind group: its buffers, textures, samplers and the
// bind group itself. The compositor creates a provider per group and the Renderer fills it.
//
// Usage pattern:
//  1. Create a provider, optionally requesting buffer sizes with WithBufferSize
//  2. Stage textures and samplers with Renderer.InitTextureView, InitRenderTarget and InitSampler
//  3. Call Renderer.InitBindGroup(provider, descriptor) to create buffers and the bind group
//  4. Write data with Renderer.WriteBuffers and pass the provider to Renderer.DrawCall
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider. It is safe to call on a provider that was
	// never initialized and to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout for this provider.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the GPU buffer for a binding, or nil if not created.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// BufferSize returns the requested byte size for a buffer binding, or 0 if none was requested.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the requested size
	BufferSize(binding int) uint64

	// Texture returns the GPU texture for a binding, or nil if not set.
	Texture(binding int) *wgpu.Texture

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// SetBindGroup sets the bind group after GPU initialization, releasing any previous one.
	// Called by Renderer.InitBindGroup().
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout after GPU initialization, releasing any previous one.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores the GPU buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetBufferSize requests a byte size for a buffer binding. It takes effect the next time the buffer is
	// created, so a live buffer must be released first.
	//
	// Parameters:
	//   - binding: the binding index
	//   - size: the requested size in bytes
	SetBufferSize(binding int, size uint64)

	// SetTexture stores a GPU texture and its view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - tv: the texture view to bind
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// SetSampler stores a GPU sampler for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// ReleaseBuffer releases the GPU buffer for a binding so the next InitBindGroup recreates it.
	ReleaseBuffer(binding int)

	// DetachBuffer removes the GPU buffer for a binding without releasing it. The caller owns the returned
	// buffer, and the next InitBindGroup creates a new one. The current bind group keeps referencing the
	// detached buffer until it is replaced.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the detached buffer, or nil if none was allocated
	DetachBuffer(binding int) *wgpu.Buffer

	// ReleaseTexture releases the GPU texture and view for a binding.
	ReleaseTexture(binding int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label used in GPU object labels and logs
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		bufferSizes:  make(map[int]uint64),
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) BufferSize(binding int) uint64 {
	return p.bufferSizes[binding]
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	if p.bindGroupLayout != nil && p.bindGroupLayout != bgl {
		p.bindGroupLayout.Release()
	}
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetBufferSize(binding int, size uint64) {
	p.bufferSizes[binding] = size
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	p.ReleaseTexture(binding)
	p.textures[binding] = tex
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if old := p.samplers[binding]; old != nil && old != s {
		old.Release()
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) ReleaseBuffer(binding int) {
	if buf := p.buffers[binding]; buf != nil {
		buf.Release()
	}
	delete(p.buffers, binding)
}

func (p *bindGroupProvider) DetachBuffer(binding int) *wgpu.Buffer {
	buf := p.buffers[binding]
	delete(p.buffers, binding)
	return buf
}

func (p *bindGroupProvider) ReleaseTexture(binding int) {
	if tv := p.textureViews[binding]; tv != nil {
		tv.Release()
	}
	if tex := p.textures[binding]; tex != nil {
		tex.Release()
	}
	delete(p.textureViews, binding)
	delete(p.textures, binding)
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for i := range p.textureViews {
		p.ReleaseTexture(i)
	}
	for i := range p.textures {
		p.ReleaseTexture(i)
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i := range p.buffers {
		p.ReleaseBuffer(i)
	}
}
