package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// BlendMode selects how a pipeline's fragments combine with its color target.
type BlendMode int

const (
	// BlendAlpha composites fragments source-over, used for sprites drawn into the unlit target.
	BlendAlpha BlendMode = iota
	// BlendAdditive sums fragment color into the target, used so overlapping lights accumulate.
	BlendAdditive
	// BlendReplace overwrites the target color.
	BlendReplace
)

func (m BlendMode) String() string {
	switch m {
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	case BlendReplace:
		return "replace"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// State returns the WebGPU blend state for the mode, nil for BlendReplace.
func (m BlendMode) State() *wgpu.BlendState {
	switch m {
	case BlendAdditive:
		return AdditiveBlend()
	case BlendReplace:
		return nil
	default:
		return AlphaBlend()
	}
}

// WithShaders sets both stages of the pipeline. The two shaders are usually compiled from the same
// source with different stages.
//
// Parameters:
//   - vs: the vertex stage
//   - fs: the fragment stage
//
// Returns:
//   - PipelineBuilderOption: a function that sets both shaders
func WithShaders(vs, fs shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vs
		p.fragmentShader = fs
	}
}

// WithOffscreenTarget makes the pipeline draw into a texture of the given format instead of the surface.
func WithOffscreenTarget(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.targetFormat = format
	}
}

// WithBlend sets how fragments combine with the color target.
func WithBlend(mode BlendMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blend = mode
	}
}

// WithVertexCount overrides the four vertex quad, for shaders that expand each instance differently.
func WithVertexCount(n uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		if n > 0 {
			p.vertexCount = n
		}
	}
}
