package compositor

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/quad.wgsl
var quadSource string

//go:embed assets/chunk.wgsl
var chunkSource string

//go:embed assets/entity.wgsl
var entitySource string

//go:embed assets/light.wgsl
var lightSource string

// Pipeline keys.
const (
	PipelineChunk  = "chunk"
	PipelineEntity = "entity"
	PipelineLight  = "light"
)

// ErrMissingBinding is returned when a shader does not declare a resource the compositor binds.
var ErrMissingBinding = errors.New("compositor: shader binding not declared")

const (
	globalsGroup  = 0
	instanceGroup = 1
)

// pipelines holds the three render pipelines of a frame.
type pipelines struct {
	chunk, entity, light pipeline.Pipeline
}

// buildPipelines parses the embedded shaders and describes the compositor's pipelines. The chunk and entity
// pipelines draw into the unlit target; the light pipeline draws additively into the surface.
func buildPipelines(unlitFormat wgpu.TextureFormat) (pipelines, error) {
	quadVS, err := shader.NewShader("quad_vs", shader.ShaderTypeVertex, quadSource)
	if err != nil {
		return pipelines{}, err
	}
	chunkFS, err := shader.NewShader("chunk_fs", shader.ShaderTypeFragment, chunkSource)
	if err != nil {
		return pipelines{}, err
	}
	entityVS, err := shader.NewShader("entity_vs", shader.ShaderTypeVertex, entitySource)
	if err != nil {
		return pipelines{}, err
	}
	entityFS, err := shader.NewShader("entity_fs", shader.ShaderTypeFragment, entitySource)
	if err != nil {
		return pipelines{}, err
	}
	lightVS, err := shader.NewShader("light_vs", shader.ShaderTypeVertex, lightSource)
	if err != nil {
		return pipelines{}, err
	}
	lightFS, err := shader.NewShader("light_fs", shader.ShaderTypeFragment, lightSource)
	if err != nil {
		return pipelines{}, err
	}

	return pipelines{
		chunk: pipeline.NewPipeline(PipelineChunk,
			pipeline.WithShaders(quadVS, chunkFS),
			pipeline.WithOffscreenTarget(unlitFormat),
		),
		entity: pipeline.NewPipeline(PipelineEntity,
			pipeline.WithShaders(entityVS, entityFS),
			pipeline.WithOffscreenTarget(unlitFormat),
		),
		light: pipeline.NewPipeline(PipelineLight,
			pipeline.WithShaders(lightVS, lightFS),
			pipeline.WithBlend(pipeline.BlendAdditive),
		),
	}, nil
}

// instanceLayout returns the merged group 1 layout of a pipeline.
func instanceLayout(p pipeline.Pipeline) (wgpu.BindGroupLayoutDescriptor, error) {
	descs, err := p.BindGroupLayoutDescriptors()
	if err != nil {
		return wgpu.BindGroupLayoutDescriptor{}, err
	}
	desc, ok := descs[instanceGroup]
	if !ok {
		return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("%w: %s has no group %d", ErrMissingBinding, p.PipelineKey(), instanceGroup)
	}
	return desc, nil
}

// lookupBinding finds the binding index of a declared resource in the fragment stage of p and checks it
// lives in the expected group.
func lookupBinding(p pipeline.Pipeline, group int, key, role shader.AnnotationArg) (int, error) {
	s := p.Shader(shader.ShaderTypeFragment)
	g, b, ok := s.Binding(key, role)
	if !ok || g != group {
		return 0, fmt.Errorf("%w: %s %s in %s", ErrMissingBinding, key, role, s.Key())
	}
	return b, nil
}
