package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

// Layout is the size and alignment in bytes of a host-shareable WGSL type.
type Layout struct {
	Size  uint64
	Align uint64
}

// stride is the distance between consecutive array elements of this type.
func (l Layout) stride() uint64 {
	return common.AlignUp(l.Size, l.Align)
}

// member is one field of a WGSL struct. Builtin members carry no buffer data.
type member struct {
	name    string
	typ     string
	builtin bool
}

var (
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberRegex = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)
	vectorRegex = regexp.MustCompile(`^vec([234])(?:<(\w+)>|([fiu]))$`)
)

// StructLayouts computes the layout of every struct declared in a WGSL source. Structs whose members
// cannot all be resolved are left out.
//
// Parameters:
//   - source: WGSL source, annotations already expanded
//
// Returns:
//   - map[string]Layout: layouts keyed by struct name
func StructLayouts(source string) map[string]Layout {
	r := newLayoutResolver(stripComments(source))
	for name := range r.decls {
		r.resolve(name)
	}
	return r.done
}

// StructSize returns the byte size of the named struct declared in a WGSL source, rounded to the struct's
// alignment.
//
// Parameters:
//   - source: WGSL source containing the struct
//   - name: the struct name, e.g. "Light"
//
// Returns:
//   - uint64: the struct size in bytes
//   - bool: false if the struct is missing or has an unresolvable member
func StructSize(source, name string) (uint64, bool) {
	l, ok := newLayoutResolver(stripComments(source)).resolve(name)
	return l.Size, ok
}

// layoutResolver resolves struct layouts on demand so declaration order does not matter.
type layoutResolver struct {
	decls    map[string][]member
	done     map[string]Layout
	visiting map[string]bool
}

func newLayoutResolver(cleaned string) *layoutResolver {
	r := &layoutResolver{
		decls:    make(map[string][]member),
		done:     make(map[string]Layout),
		visiting: make(map[string]bool),
	}
	for _, m := range structRegex.FindAllStringSubmatch(cleaned, -1) {
		r.decls[m[1]] = parseMembers(m[2])
	}
	return r
}

// resolve computes a struct layout. A trailing runtime-sized array counts as one element, which is the
// smallest binding the struct can be used with.
func (r *layoutResolver) resolve(name string) (Layout, bool) {
	if l, ok := r.done[name]; ok {
		return l, true
	}
	members, ok := r.decls[name]
	if !ok || r.visiting[name] {
		return Layout{}, false
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	var offset uint64
	align := uint64(1)
	for i, m := range members {
		if m.builtin {
			continue
		}
		l, runtime, ok := r.typeLayout(m.typ)
		if !ok || (runtime && i != len(members)-1) {
			return Layout{}, false
		}
		offset = common.AlignUp(offset, l.Align) + l.Size
		align = max(align, l.Align)
	}

	l := Layout{Size: common.AlignUp(offset, align), Align: align}
	r.done[name] = l
	return l, true
}

// typeLayout resolves scalars, vectors, structs and arrays. runtime reports an array without a length,
// whose returned layout covers a single element.
func (r *layoutResolver) typeLayout(typ string) (l Layout, runtime bool, ok bool) {
	switch typ {
	case "f32", "i32", "u32":
		return Layout{Size: 4, Align: 4}, false, true
	}

	if m := vectorRegex.FindStringSubmatch(typ); m != nil {
		n, _ := strconv.ParseUint(m[1], 10, 64)
		if m[2] != "" && m[2] != "f32" && m[2] != "i32" && m[2] != "u32" {
			return Layout{}, false, false
		}
		align := uint64(16)
		if n == 2 {
			align = 8
		}
		return Layout{Size: 4 * n, Align: align}, false, true
	}

	if inner, found := strings.CutPrefix(typ, "array<"); found && strings.HasSuffix(inner, ">") {
		elemType, count, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
		elem, elemRuntime, elemOK := r.typeLayout(strings.TrimSpace(elemType))
		if !elemOK || elemRuntime {
			return Layout{}, false, false
		}
		if !sized {
			return Layout{Size: elem.stride(), Align: elem.Align}, true, true
		}
		n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
		if err != nil || n == 0 {
			return Layout{}, false, false
		}
		return Layout{Size: n * elem.stride(), Align: elem.Align}, false, true
	}

	l, ok = r.resolve(typ)
	return l, false, ok
}

// parseMembers splits a struct body at commas outside angle brackets.
func parseMembers(body string) []member {
	var members []member
	depth, start := 0, 0
	add := func(field string) {
		m := memberRegex.FindStringSubmatch(strings.TrimSpace(field))
		if m == nil {
			return
		}
		members = append(members, member{
			name:    m[2],
			typ:     strings.TrimSpace(m[3]),
			builtin: strings.Contains(m[1], "@builtin"),
		})
	}
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				add(body[start:i])
				start = i + 1
			}
		}
	}
	add(body[start:])
	return members
}

// stripComments removes line comments and nested block comments, keeping newlines.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		next := byte(0)
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
