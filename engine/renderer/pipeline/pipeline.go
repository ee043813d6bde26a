package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingShader is returned when a pipeline is built without both a vertex and a fragment shader.
var ErrMissingShader = errors.New("pipeline: vertex and fragment shaders are required")

// ErrLayoutConflict is returned when two stages declare different resources at the same group and binding.
var ErrLayoutConflict = errors.New("pipeline: conflicting bind group layout entries")

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU render pipeline and the state needed to create it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// the following shader references are used for pipeline creation, they are required to be set before initializing a pipeline.

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is the created render pipeline, nil until registered with a Renderer
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure the pipeline during creation and can be set with the builder options.

	vertexCount  uint32
	targetFormat wgpu.TextureFormat
	blend        BlendMode
}

// Pipeline defines the interface for a render pipeline that draws generated quads. Vertex positions come
// from the vertex index in the shader, so a pipeline carries no vertex buffer layout, only the number of
// vertices a single draw emits.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified stage if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the stage of the shader to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the created render pipeline, or nil if it has not been registered.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayoutDescriptors merges the layouts declared by the vertex and fragment stages. Entries
	// declared by both stages are combined with their visibility flags joined.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
	//   - error: ErrMissingShader or ErrLayoutConflict
	BindGroupLayoutDescriptors() (map[int]wgpu.BindGroupLayoutDescriptor, error)

	// VertexCount returns the number of vertices a single draw of this pipeline emits.
	//
	// Returns:
	//   - uint32: the vertex count, 4 for a triangle strip quad
	VertexCount() uint32

	// TargetFormat returns the color target format, or wgpu.TextureFormatUndefined to use the surface format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	TargetFormat() wgpu.TextureFormat

	// Primitive returns the primitive state every quad pipeline is created with: an unculled
	// counter-clockwise triangle strip.
	//
	// Returns:
	//   - wgpu.PrimitiveState: the primitive state
	Primitive() wgpu.PrimitiveState

	// Blend returns the blend mode configured for this pipeline.
	//
	// Returns:
	//   - BlendMode: the blend mode, BlendAlpha by default
	Blend() BlendMode

	// BlendState returns the WebGPU blend state for the pipeline's blend mode.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil to replace the target
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the render pipeline, releasing any previously stored one.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the render pipeline if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// AlphaBlend is the source-over blend used when compositing sprites onto the unlit target.
func AlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// AdditiveBlend sums each fragment's color into the target. Alpha is replaced so the presented image stays opaque.
func AdditiveBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// NewPipeline is the entry point to create a new render Pipeline. By default it draws a four vertex
// quad with alpha blending into the surface format.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		vertexCount:  4,
		targetFormat: wgpu.TextureFormatUndefined,
		blend:        BlendAlpha,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayoutDescriptors() (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingShader, p.pipelineKey)
	}

	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		for group, desc := range s.BindGroupLayoutDescriptors() {
			if merged[group] == nil {
				merged[group] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, entry := range desc.Entries {
				existing, ok := merged[group][entry.Binding]
				if !ok {
					merged[group][entry.Binding] = entry
					continue
				}
				if !sameResource(existing, entry) {
					return nil, fmt.Errorf("%w: %s group %d binding %d", ErrLayoutConflict, p.pipelineKey, group, entry.Binding)
				}
				existing.Visibility |= entry.Visibility
				existing.Buffer.HasDynamicOffset = existing.Buffer.HasDynamicOffset || entry.Buffer.HasDynamicOffset
				existing.Buffer.MinBindingSize = max(existing.Buffer.MinBindingSize, entry.Buffer.MinBindingSize)
				merged[group][entry.Binding] = existing
			}
		}
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for group, entries := range merged {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Binding < list[j].Binding
		})
		result[group] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_group_%d", p.pipelineKey, group),
			Entries: list,
		}
	}
	return result, nil
}

// sameResource reports whether two layout entries describe the same kind of resource.
func sameResource(a, b wgpu.BindGroupLayoutEntry) bool {
	return a.Buffer.Type == b.Buffer.Type &&
		a.Sampler.Type == b.Sampler.Type &&
		a.Texture.SampleType == b.Texture.SampleType &&
		a.Texture.ViewDimension == b.Texture.ViewDimension
}

func (p *pipeline) VertexCount() uint32 {
	return p.vertexCount
}

func (p *pipeline) TargetFormat() wgpu.TextureFormat {
	return p.targetFormat
}

func (p *pipeline) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleStrip,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	}
}

func (p *pipeline) Blend() BlendMode {
	return p.blend
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blend.State()
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.renderPipeline != nil && p.renderPipeline != rp {
		p.renderPipeline.Release()
	}
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
