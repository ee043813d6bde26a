package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// resource is one @group/@binding variable declared in WGSL.
type resource struct {
	group   int
	binding int
	space   string // address space inside var<...>, empty for textures and samplers
	name    string
	typ     string
}

// bindingKey identifies a resource by group and binding.
type bindingKey struct {
	group, binding int
}

var (
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	entryRegex    = regexp.MustCompile(`(?s)@(vertex|fragment)\b.*?\bfn\s+(\w+)`)
)

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_1d":       wgpu.TextureViewDimension1D,
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_3d":       wgpu.TextureViewDimension3D,
	"texture_cube":     wgpu.TextureViewDimensionCube,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// scanResources lists the resource variables of a cleaned source in declaration order.
func scanResources(cleaned string) []resource {
	matches := resourceRegex.FindAllStringSubmatch(cleaned, -1)
	out := make([]resource, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		out = append(out, resource{
			group:   group,
			binding: binding,
			space:   strings.TrimSpace(m[3]),
			name:    m[4],
			typ:     strings.TrimSpace(m[5]),
		})
	}
	return out
}

// reflectBindGroups builds one layout descriptor per group from the resources a stage declares. Buffer
// entries get the bound type's size as MinBindingSize, which for a dynamic uniform is the record each draw
// offset selects.
//
// Parameters:
//   - source: the expanded WGSL source
//   - visibility: the stage every entry is visible to
//   - dynamic: the uniform bindings addressed with a dynamic offset
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group, entries sorted by binding
//   - map[int]map[int]string: variable names keyed by group and binding
func reflectBindGroups(source string, visibility wgpu.ShaderStage, dynamic map[bindingKey]bool) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	types := newLayoutResolver(cleaned)

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, res := range scanResources(cleaned) {
		entry := layoutEntry(res, visibility, types)
		if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
			entry.Buffer.HasDynamicOffset = dynamic[bindingKey{res.group, res.binding}]
		}
		entries[res.group] = append(entries[res.group], entry)

		if names[res.group] == nil {
			names[res.group] = make(map[int]string)
		}
		names[res.group][res.binding] = res.name
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		descriptors[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return descriptors, names
}

// layoutEntry classifies a resource as a buffer, texture or sampler.
func layoutEntry(res resource, visibility wgpu.ShaderStage, types *layoutResolver) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(res.binding),
		Visibility: visibility,
	}

	switch {
	case res.space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(res.space, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(res.space, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case res.typ == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case res.typ == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	default:
		base, param, _ := strings.Cut(res.typ, "<")
		if dim, ok := textureDimensions[base]; ok {
			entry.Texture.ViewDimension = dim
			entry.Texture.SampleType = sampleTypes[strings.TrimSpace(strings.TrimSuffix(param, ">"))]
		}
		return entry
	}

	if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
		if l, _, ok := types.typeLayout(res.typ); ok {
			entry.Buffer.MinBindingSize = l.Size
		}
	}
	return entry
}

// entryPoint returns the name of the first function marked for the stage, or "" if there is none.
func entryPoint(source string, shaderType ShaderType) string {
	stage := "vertex"
	if shaderType == ShaderTypeFragment {
		stage = "fragment"
	}
	for _, m := range entryRegex.FindAllStringSubmatch(stripComments(source), -1) {
		if m[1] == stage {
			return m[2]
		}
	}
	return ""
}
