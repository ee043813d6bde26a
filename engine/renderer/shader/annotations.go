// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that drive struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the compositor to wire GPU resources without hard-coded binding indices.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. It does not produce a declaration.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include tile_data
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and records a declaration carrying the group, binding, address space and struct type.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 1 0 dynamic_uniform light light
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a hand-written
	// texture or sampler binding directly below the annotation. No WGSL is generated.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 1 2 entity_atlas sampler
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "light")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "unlit"), [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// Dynamic reports whether the annotation declares a uniform bound with a dynamic offset.
func (a Annotation) Dynamic() bool {
	return a.Type == AnnotationTypeBindingGroup && len(a.Args) > 0 && a.Args[0] == AnnotationArgDynamicUniform
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgGlobals identifies the Globals struct (resolution and camera).
	// Source: engine/globals/assets/globals.wgsl
	AnnotationArgGlobals AnnotationArg = "globals"

	// AnnotationArgTileData identifies the TileData catalog record.
	// Source: engine/tile/assets/tile_data.wgsl
	AnnotationArgTileData AnnotationArg = "tile_data"

	// AnnotationArgChunk identifies the packed 16x16 chunk layout.
	// Source: engine/chunk/assets/chunk.wgsl
	AnnotationArgChunk AnnotationArg = "chunk"

	// AnnotationArgChunkLocals identifies the chunk window origin and size.
	// Source: engine/chunk/assets/chunk_locals.wgsl
	AnnotationArgChunkLocals AnnotationArg = "chunk_locals"

	// AnnotationArgEntity identifies the per-entity sprite record.
	// Source: engine/entity/assets/entity.wgsl
	AnnotationArgEntity AnnotationArg = "entity"

	// AnnotationArgLight identifies the per-light record.
	// Source: engine/light/assets/light.wgsl
	AnnotationArgLight AnnotationArg = "light"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// AnnotationArgDynamicUniform maps to var<uniform> in WGSL and marks the layout entry
	// as selected per draw with a dynamic offset.
	AnnotationArgDynamicUniform AnnotationArg = "dynamic_uniform"
)

// ── Provider identity arguments ────────────────────────────────────────────────

const (
	// AnnotationArgTileAtlas identifies the tile sheet texture.
	AnnotationArgTileAtlas AnnotationArg = "tile_atlas"

	// AnnotationArgEntityAtlas identifies the entity sprite sheet texture and its sampler.
	AnnotationArgEntityAtlas AnnotationArg = "entity_atlas"

	// AnnotationArgUnlit identifies the offscreen unlit color target sampled by the lighting pass.
	AnnotationArgUnlit AnnotationArg = "unlit"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgTexture qualifies the texture binding of a provider.
	AnnotationArgTexture AnnotationArg = "texture"

	// AnnotationArgSampler qualifies the sampler binding of a provider.
	AnnotationArgSampler AnnotationArg = "sampler"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgGlobals,
	AnnotationArgTileData,
	AnnotationArgChunk,
	AnnotationArgChunkLocals,
	AnnotationArgEntity,
	AnnotationArgLight,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	AnnotationArgDynamicUniform,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgTileAtlas,
	AnnotationArgEntityAtlas,
	AnnotationArgUnlit,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgTexture,
	AnnotationArgSampler,
}

// structTypeKey strips an array<> wrapper and any fixed length from a group annotation type argument.
// "array<tile_data, 256>" and "array<chunk>" yield "tile_data" and "chunk".
func structTypeKey(typeArg string) (key AnnotationArg, length string, isArray bool) {
	inner, ok := strings.CutPrefix(typeArg, "array<")
	if !ok {
		return AnnotationArg(typeArg), "", false
	}
	inner = strings.TrimSuffix(inner, ">")
	elem, n, _ := strings.Cut(inner, ",")
	return AnnotationArg(strings.TrimSpace(elem)), strings.TrimSpace(n), true
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	// array<tile_data, 256> contains a space, so rejoin the type argument before splitting on fields
	after = strings.ReplaceAll(after, ", ", ",")
	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		key, length, isArray := structTypeKey(args[5])
		if !slices.Contains(validStructTypes, key) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, key)
		}
		if isArray && length != "" {
			if _, err := strconv.ParseUint(length, 10, 32); err != nil {
				return nil, fmt.Errorf("line %d: invalid array length %q in @oxy group annotation", lineNum, length)
			}
		}
		if isArray && AnnotationArg(args[3]) == AnnotationArgDynamicUniform {
			return nil, fmt.Errorf("line %d: dynamic_uniform bindings must bind a single struct, not %q", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
