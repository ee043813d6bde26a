package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which render pipeline stage a shader is built for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// ErrNoEntryPoint is returned when a shader source has no entry point for the requested stage.
var ErrNoEntryPoint = errors.New("shader: no entry point for stage")

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor
	declarations               []Annotation
}

// Shader defines the interface for a loaded and parsed WGSL shader. It exposes the shader's
// unique key, source code, entry point, bind group layout descriptors and pre-processor
// declarations needed for pipeline creation and resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group, or an empty descriptor if not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// Binding locates the group and binding of a declared resource. For struct bindings the key is
	// the struct type argument (e.g. AnnotationArgLight) and role is empty. For provider bindings
	// the key is the provider identity and role optionally narrows it to a texture or sampler.
	//
	// Parameters:
	//   - key: the struct type or provider identity to find
	//   - role: the binding role for provider annotations, or "" to match any
	//
	// Returns:
	//   - int: the group index
	//   - int: the binding index
	//   - bool: true if a matching declaration was found
	Binding(key, role AnnotationArg) (int, int, bool)

	// EntryPoint returns the entry point name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage this shader was built for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Declarations returns the group and provider annotations parsed from the shader source.
	//
	// Returns:
	//   - []Annotation: declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and parses a WGSL source for a single pipeline stage. The same source may be
// loaded once per stage when it holds both a vertex and a fragment entry point.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the shader is built for
//   - source: the raw WGSL source containing @oxy: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if an annotation is malformed or the stage has no entry point
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process source: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	s.entryPoint = entryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, key)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	visibility := wgpu.ShaderStageVertex
	if s.shaderType == ShaderTypeFragment {
		visibility = wgpu.ShaderStageFragment
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = reflectBindGroups(s.source, visibility, s.dynamicBindings())
	return s, nil
}

// dynamicBindings collects the bindings declared as dynamic_uniform. The generated WGSL for those is a
// plain var<uniform>, so only the annotations tell them apart.
func (s *shader) dynamicBindings() map[bindingKey]bool {
	dynamic := make(map[bindingKey]bool)
	for _, d := range s.declarations {
		if d.Dynamic() {
			dynamic[bindingKey{*d.Group, *d.Binding}] = true
		}
	}
	return dynamic
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Binding(key, role AnnotationArg) (int, int, bool) {
	for _, d := range s.declarations {
		switch d.Type {
		case AnnotationTypeBindingGroup:
			if k, _, _ := structTypeKey(string(d.Args[2])); k == key && role == "" {
				return *d.Group, *d.Binding, true
			}
		case AnnotationTypeProvider:
			if d.Args[0] != key {
				continue
			}
			if role == "" || (len(d.Args) > 1 && d.Args[1] == role) {
				return *d.Group, *d.Binding, true
			}
		}
	}
	return -1, -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}
